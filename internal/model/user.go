package model

import "time"

// User represents an application user record as stored in the
// `users` table. Each field corresponds to a column in the
// database. The json tags are omitted here because these structs
// are primarily used internally by the repository layer; handlers
// may define separate response types with appropriate JSON tags.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  FirstName    – given name shown alongside ratings and requests.
//  LastName     – family name.
//  PhoneNumber  – contact phone number in international or local form.
//  Birthday     – date of birth (date component only is meaningful).
//  Approved     – whether the account passed email verification.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	FirstName    string    // users.first_name
	LastName     string    // users.last_name
	PhoneNumber  string    // users.phone_number
	Birthday     time.Time // users.birthday
	Approved     bool      // users.approved
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
