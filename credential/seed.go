package credential

import "fmt"

// DefaultSeed returns the records created on a first run so the dashboard is
// reachable out of the box. The credentials are development defaults and
// should be rotated immediately on any shared deployment.
func DefaultSeed() []Candidate {
	return []Candidate{
		{Name: "Admin User", Email: "admin@example.com", RawCredential: "password", Role: RoleAdmin},
		{Name: "John Doe", Email: "john@example.com", RawCredential: "password123", Role: RoleUser},
		{Name: "Jane Smith", Email: "jane@example.com", RawCredential: "password123", Role: RoleUser},
	}
}

// Seed populates an empty store with the default records. A store that
// already holds records is left untouched.
func Seed(s *Store) error {
	if len(s.List()) > 0 {
		return nil
	}
	for _, c := range DefaultSeed() {
		if err := s.Add(c); err != nil {
			return fmt.Errorf("seeding %s: %w", c.Email, err)
		}
	}
	return nil
}
