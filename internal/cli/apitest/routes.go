package apitest

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func (b *Backend) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), b.recordRequests())

	api := r.Group("/api")

	// Core
	api.POST("/core/login/", b.login)
	api.POST("/core/register/", b.register)
	api.GET("/core/activate/:token/", b.activate)

	authed := api.Group("", b.requireAuth())
	authed.PATCH("/core/profile/update/", b.updateProfile)
	authed.PATCH("/core/profile/upload-image/", b.uploadProfileImage)

	// Catalog, readable anonymously
	api.GET("/events/events/", b.list("events"))
	api.GET("/events/events/:id/", b.get("events"))
	api.GET("/packages/packages/", b.list("packages"))
	api.GET("/announcements/announcements/", b.list("announcements"))
	authed.POST("/events/events/", b.createEvent)

	// Bookings
	authed.GET("/bookings/bookings/", b.list("bookings"))
	authed.GET("/bookings/bookings/:id/", b.get("bookings"))
	authed.POST("/bookings/bookings/", b.createBooking)

	// Payments
	authed.GET("/payments/payments/", b.list("payments"))
	authed.GET("/payments/payments/payment_stats/", b.paymentStats)
	authed.GET("/payments/payments/:id/", b.get("payments"))
	authed.POST("/payments/payments/", b.createPayment)
	authed.POST("/payments/payments/:id/process_payment/", b.processPayment)

	// Testimonials
	api.GET("/testimonials/testimonials/public/", b.testimonialsWhere(func(t map[string]any) bool {
		return t["status"] == "approved"
	}))
	api.GET("/testimonials/testimonials/featured/", b.testimonialsWhere(func(t map[string]any) bool {
		return t["status"] == "approved" && t["is_featured"] == true
	}))
	authed.GET("/testimonials/testimonials/", b.list("testimonials"))
	authed.POST("/testimonials/testimonials/", b.createTestimonial)

	admin := authed.Group("", requireAdmin())
	admin.GET("/testimonials/testimonials/pending/", b.testimonialsWhere(func(t map[string]any) bool {
		return t["status"] == "pending"
	}))
	admin.POST("/testimonials/testimonials/:id/approve/", b.moderate("approved"))
	admin.POST("/testimonials/testimonials/:id/reject/", b.moderate("rejected"))

	return r
}

func (b *Backend) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	b.mu.Lock()
	acc := b.accounts[req.Email]
	hold := b.loginHolds[req.Email]
	b.mu.Unlock()

	if hold != nil {
		b.loginStarted <- req.Email
		select {
		case <-hold:
		case <-c.Request.Context().Done():
			return
		}
	}

	if acc == nil || acc.Password != req.Password || !acc.Active {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "No active account found with the given credentials"})
		return
	}

	access, err := b.IssueToken(acc, time.Hour)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to issue token"})
		return
	}

	b.mu.Lock()
	user := userJSON(acc)
	b.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"access":  access,
		"refresh": fmt.Sprintf("refresh-%d-%s", acc.ID, access[len(access)-8:]),
		"user":    user,
	})
}

func (b *Backend) register(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	fields := gin.H{}
	if req.Username == "" {
		fields["username"] = []string{"This field is required."}
	}
	if len(req.Password) < 8 {
		fields["password"] = []string{"This password is too short. It must contain at least 8 characters."}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.accounts[req.Email]; exists {
		fields["email"] = []string{"user with this email already exists."}
	}
	if len(fields) > 0 {
		c.JSON(http.StatusBadRequest, fields)
		return
	}

	id := b.allocID("accounts")
	b.accounts[req.Email] = &Account{
		ID:       id,
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		Role:     "client",
		Profile:  map[string]any{},
	}
	b.activations[fmt.Sprintf("act-%d", id)] = req.Email

	c.JSON(http.StatusCreated, gin.H{"message": "Account created. Check your email to activate it."})
}

func (b *Backend) activate(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	email, ok := b.activations[c.Param("token")]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired activation token."})
		return
	}
	b.accounts[email].Active = true
	delete(b.activations, c.Param("token"))

	c.JSON(http.StatusOK, gin.H{"message": "Account activated successfully."})
}

func (b *Backend) updateProfile(c *gin.Context) {
	var req map[string]any
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	acc := currentAccount(c)

	b.mu.Lock()
	defer b.mu.Unlock()

	for k, v := range req {
		switch k {
		case "username":
			acc.Username = fmt.Sprint(v)
		case "email":
			delete(b.accounts, acc.Email)
			acc.Email = fmt.Sprint(v)
			b.accounts[acc.Email] = acc
		case "id", "role":
			// read-only
		default:
			acc.Profile[k] = v
		}
	}

	c.JSON(http.StatusOK, userJSON(acc))
}

func (b *Backend) uploadProfileImage(c *gin.Context) {
	file, err := c.FormFile("profile_image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"profile_image": []string{"No file was submitted."}})
		return
	}

	acc := currentAccount(c)

	b.mu.Lock()
	defer b.mu.Unlock()

	acc.Profile["profile_image"] = mediaURL(c, "profiles", file.Filename)
	c.JSON(http.StatusOK, userJSON(acc))
}

func (b *Backend) list(resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, b.Records(resource))
	}
}

func (b *Backend) get(resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		b.mu.Lock()
		defer b.mu.Unlock()

		r := b.find(resource, c.Param("id"))
		if r == nil {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
			return
		}
		c.JSON(http.StatusOK, r)
	}
}

func (b *Backend) createEvent(c *gin.Context) {
	title := c.PostForm("title")
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"title": []string{"This field is required."}})
		return
	}

	event := map[string]any{
		"title":       title,
		"description": c.PostForm("description"),
		"date":        c.PostForm("date"),
		"location":    c.PostForm("location"),
		"event_type":  c.PostForm("event_type"),
		"package":     c.PostForm("package_id"),
		"images":      nil,
	}
	if file, err := c.FormFile("images"); err == nil {
		event["images"] = mediaURL(c, "events", file.Filename)
	}

	b.mu.Lock()
	created := b.insert("events", event)
	b.mu.Unlock()

	c.JSON(http.StatusCreated, created)
}

func (b *Backend) createBooking(c *gin.Context) {
	var req struct {
		EventID    any    `json:"event_id"`
		ClientID   int64  `json:"client_id"`
		AmountPaid string `json:"amount_paid"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	acc := currentAccount(c)
	if acc.Role != "client" {
		c.JSON(http.StatusForbidden, gin.H{"detail": "Only clients can create bookings."})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	event := b.find("events", fmt.Sprint(req.EventID))
	if event == nil {
		c.JSON(http.StatusBadRequest, gin.H{"event_id": []string{"Invalid pk - object does not exist."}})
		return
	}

	created := b.insert("bookings", map[string]any{
		"event":       copyRecord(event),
		"client":      userRef(acc),
		"amount_paid": req.AmountPaid,
		"status":      "pending",
	})
	c.JSON(http.StatusCreated, created)
}

func (b *Backend) createPayment(c *gin.Context) {
	var req map[string]any
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	booking := b.find("bookings", fmt.Sprint(req["booking_id"]))
	if booking == nil {
		c.JSON(http.StatusBadRequest, gin.H{"booking_id": []string{"Invalid pk - object does not exist."}})
		return
	}

	delete(req, "booking_id")
	req["booking"] = gin.H{"id": booking["id"], "status": booking["status"], "event": booking["event"]}
	req["client"] = userRef(currentAccount(c))
	req["status"] = "pending"

	c.JSON(http.StatusCreated, b.insert("payments", req))
}

func (b *Backend) processPayment(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p := b.find("payments", c.Param("id"))
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}
	if p["status"] == "completed" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Payment already processed"})
		return
	}
	if parseAmount(p["amount"]) <= 0 {
		p["status"] = "failed"
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Payment declined: invalid amount"})
		return
	}

	p["status"] = "completed"
	p["transaction_id"] = fmt.Sprintf("TXN-%06d", p["id"])
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Payment processed successfully", "transaction_id": p["transaction_id"]})
}

func (b *Backend) paymentStats(c *gin.Context) {
	payments := b.Records("payments")

	var completed, pending int
	var total float64
	for _, p := range payments {
		switch p["status"] {
		case "completed":
			completed++
			total += parseAmount(p["amount"])
		case "pending":
			pending++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"total_payments":     len(payments),
		"completed_payments": completed,
		"pending_payments":   pending,
		"total_amount":       total,
	})
}

func (b *Backend) testimonialsWhere(keep func(map[string]any) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		out := []map[string]any{}
		for _, t := range b.Records("testimonials") {
			if keep(t) {
				out = append(out, t)
			}
		}
		c.JSON(http.StatusOK, out)
	}
}

func (b *Backend) createTestimonial(c *gin.Context) {
	var req map[string]any
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	if rating := parseAmount(req["rating"]); rating < 1 || rating > 5 {
		c.JSON(http.StatusBadRequest, gin.H{"rating": []string{"Ensure this value is between 1 and 5."}})
		return
	}

	req["status"] = "pending"
	req["is_featured"] = false
	req["user"] = currentAccount(c).ID

	b.mu.Lock()
	created := b.insert("testimonials", req)
	b.mu.Unlock()

	c.JSON(http.StatusCreated, created)
}

func (b *Backend) moderate(status string) gin.HandlerFunc {
	return func(c *gin.Context) {
		b.mu.Lock()
		defer b.mu.Unlock()

		t := b.find("testimonials", c.Param("id"))
		if t == nil {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
			return
		}
		t["status"] = status
		c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Testimonial %s", status)})
	}
}
