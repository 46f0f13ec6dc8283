package domain

// User is a registered player account. Identity is the username alone.
type User struct {
	Username     string `db:"username"`
	PasswordHash string `db:"password_hash"`
	DisplayName  string `db:"display_name"`
	Online       bool   `db:"online"`
}

func RegisterUser(
	username string,
	displayName string,
	password string,
	passwordHasher PasswordHasher,
) (User, error) {
	passwordHash, err := passwordHasher.HashPassword(password)
	if err != nil {
		return User{}, err
	}

	return User{
		Username:     username,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
	}, nil
}

func (u *User) Authenticate(password string, passwordHasher PasswordHasher) error {
	return passwordHasher.Verify(u.PasswordHash, password)
}
