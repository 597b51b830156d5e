package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword 生成 bcrypt 哈希（自带盐，存储层面替代旧版的裸 SHA-256）
func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func CheckPassword(pw, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw)) == nil
}
