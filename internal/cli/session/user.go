package session

import "encoding/json"

// User is the principal the backend returned at login. Only the fields the
// CLI displays are typed; Raw keeps the full payload.
type User struct {
	ID           int64  `json:"id" yaml:"id"`
	Email        string `json:"email" yaml:"email"`
	Username     string `json:"username,omitempty" yaml:"username,omitempty"`
	Role         string `json:"role,omitempty" yaml:"role,omitempty"`
	FirstName    string `json:"first_name,omitempty" yaml:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty" yaml:"last_name,omitempty"`
	ProfileImage string `json:"profile_image,omitempty" yaml:"profile_image,omitempty"`

	Raw json.RawMessage `json:"-" yaml:"-"`
}

func (u *User) UnmarshalJSON(data []byte) error {
	type alias User
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*u = User(a)
	u.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// IsAdmin reports whether the user may moderate content
func (u *User) IsAdmin() bool {
	return u.Role == "admin" || u.Role == "agency"
}

func (u *User) clone() *User {
	c := *u
	c.Raw = append(json.RawMessage(nil), u.Raw...)
	return &c
}
