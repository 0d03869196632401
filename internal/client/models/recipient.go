package models

import "strings"

// DefaultRecipientImage is used when a recipient is saved without an image.
const DefaultRecipientImage = "https://via.placeholder.com/200?text=Default+User"

// Recipient is a saved transfer destination, scoped to one user.
type Recipient struct {
	RecipientID int    `json:"recipientId"`
	Name        string `json:"name"`
	Username    string `json:"username,omitempty"`
	Email       string `json:"email,omitempty"`
	CNIC        string `json:"cnic,omitempty"`
	Image       string `json:"image,omitempty"`
}

// Actionable reports whether the recipient has at least one contact id a
// transfer can be addressed to.
func (r Recipient) Actionable() bool {
	return strings.TrimSpace(r.Username) != "" ||
		strings.TrimSpace(r.Email) != "" ||
		strings.TrimSpace(r.CNIC) != ""
}

// Contact returns the first contact id in username, email, cnic order.
func (r Recipient) Contact() string {
	for _, c := range []string{r.Username, r.Email, r.CNIC} {
		if c = strings.TrimSpace(c); c != "" {
			return c
		}
	}
	return ""
}
