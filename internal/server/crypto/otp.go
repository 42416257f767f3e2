package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"math/big"
)

const (
	// OTPMin и OTPMax - границы шестизначного кода (включительно).
	OTPMin = 100000
	OTPMax = 999999
)

// NewOTP возвращает равномерно случайный код из [OTPMin, OTPMax].
func NewOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(OTPMax-OTPMin+1))
	if err != nil {
		return "", fmt.Errorf("otp rand: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+OTPMin), nil
}

// HashOTP - в базе лежит только sha256 кода.
func HashOTP(code string) []byte {
	sum := sha256.Sum256([]byte(code))
	return sum[:]
}

// EqualOTP сравнивает введённый код с сохранённым хэшем за постоянное время.
func EqualOTP(code string, hash []byte) bool {
	return subtle.ConstantTimeCompare(HashOTP(code), hash) == 1
}
