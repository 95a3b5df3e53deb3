package handlers

import "testing"

func TestPasswordHashing(t *testing.T) {
	password := "super-secret"
	hash, err := hashPassword(password)
	if err != nil {
		t.Fatalf("hashPassword failed: %v", err)
	}
	if hash == "" || hash == password {
		t.Fatal("expected a non-empty hash distinct from the password")
	}
	if err := verifyPassword(hash, password); err != nil {
		t.Fatalf("verifyPassword should succeed: %v", err)
	}
	if err := verifyPassword(hash, "wrong-pass"); err == nil {
		t.Fatal("verifyPassword should fail for a wrong password")
	}
}

func TestValidEmail(t *testing.T) {
	valid := []string{"a@b.com", "ada.barber@example.com.br"}
	for _, e := range valid {
		if !validEmail(e) {
			t.Errorf("expected %q to be valid", e)
		}
	}
	invalid := []string{"", "no-at-sign", "@leading", "trailing@", "two words@x"}
	for _, e := range invalid {
		if validEmail(e) {
			t.Errorf("expected %q to be invalid", e)
		}
	}
}
