package credential

// Role classifies a user's privilege level in the admin interface.
type Role string

const (
	RoleAdmin Role = "Admin"
	RoleUser  Role = "User"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// Status marks whether an account is usable.
type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
)

// UserRecord is one canonical user entry, owned exclusively by the Store.
// CredentialHash holds the bcrypt hash of the user's credential; the raw
// credential is never stored.
type UserRecord struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	CredentialHash string `json:"password"`
	Role           Role   `json:"role"`
	Status         Status `json:"status"`
}

// Candidate is the input to Store.Add. The store assigns the ID and the
// initial Active status itself.
type Candidate struct {
	Name          string
	Email         string
	RawCredential string
	Role          Role
}
