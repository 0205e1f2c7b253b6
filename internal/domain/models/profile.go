// internal/domain/models/profile.go
package models

// UserProfile is the per-user profile record, keyed in the profiles
// collection by the identity provider's user id (one record per
// identity). Saving replaces the whole record; callers carry every
// field forward themselves.
type UserProfile struct {
	Email         string `bson:"email" json:"email"`
	StudentNumber string `bson:"studentNumber" json:"studentNumber"` // 7-digit numeric string
	DisplayName   string `bson:"displayName,omitempty" json:"displayName,omitempty"`
	ImageURL      string `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
}
