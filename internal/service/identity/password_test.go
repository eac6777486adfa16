package identity

import "testing"

func TestBcryptPasswordService(t *testing.T) {
	service := NewBcryptPasswordService(4)

	hash, err := service.Hash("open sesame")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hash == "open sesame" {
		t.Fatal("hash must not equal the plaintext")
	}

	if err := service.Compare(hash, "open sesame"); err != nil {
		t.Errorf("expected matching password to compare clean: %v", err)
	}
	if err := service.Compare(hash, "wrong"); err == nil {
		t.Error("expected mismatch error for wrong password")
	}
}

func TestBcryptPasswordService_EmptyInputs(t *testing.T) {
	service := NewBcryptPasswordService(4)

	if _, err := service.Hash(""); err == nil {
		t.Error("expected error hashing empty password")
	}
	if err := service.Compare("", "x"); err == nil {
		t.Error("expected error comparing empty hash")
	}
	if err := service.Compare("x", ""); err == nil {
		t.Error("expected error comparing empty password")
	}
}

func TestBcryptPasswordService_UniqueSalts(t *testing.T) {
	service := NewBcryptPasswordService(4)

	h1, _ := service.Hash("open sesame")
	h2, _ := service.Hash("open sesame")
	if h1 == h2 {
		t.Error("expected different salts to yield different hashes")
	}
}
