package crypto

import "testing"

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("ACLZBw6QCZ")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	if err := CheckPassword(hash, "ACLZBw6QCZ"); err != nil {
		t.Fatalf("expected password to match")
	}
	if err := CheckPassword(hash, "wrong"); err == nil {
		t.Fatalf("expected password mismatch")
	}
}
