package domain

// Account is a row of the employee table.
type Account struct {
	ID         string `db:"id"`
	Email      string `db:"email"`
	Name       string `db:"name"`
	Hash       string `db:"password"`
	Role       string `db:"role"`
	Department string `db:"department"`
}

// Profile is the public view of an account returned after login.
type Profile struct {
	Email      string `json:"email"`
	Role       string `json:"role"`
	Department string `json:"department"`
	Name       string `json:"name"`
}

func (a *Account) Profile() Profile {
	return Profile{Email: a.Email, Role: a.Role, Department: a.Department, Name: a.Name}
}
