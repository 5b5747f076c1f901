package auth

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if hash == "correct horse" {
		t.Fatalf("hash should not equal plaintext")
	}
	if !CheckPassword("correct horse", hash) {
		t.Fatalf("expected matching password to verify")
	}
	if CheckPassword("wrong horse", hash) {
		t.Fatalf("expected mismatching password to fail")
	}
}

func TestCheckPasswordRejectsGarbageHash(t *testing.T) {
	if CheckPassword("anything", "not-a-bcrypt-hash") {
		t.Fatalf("garbage hash should not verify")
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("12345"); err == nil {
		t.Fatalf("expected short password to be rejected")
	}
	if err := ValidatePassword("123456"); err != nil {
		t.Fatalf("expected 6-char password to pass: %v", err)
	}
}
