package auth

import "testing"

func TestTokenRoundTrip(t *testing.T) {
	token, err := CreateToken(42)
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}
	userID, err := VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if userID != 42 {
		t.Errorf("got user id %d, want 42", userID)
	}
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	for _, token := range []string{"", "garbage", "a.b.c"} {
		if _, err := VerifyToken(token); err != ErrInvalidToken {
			t.Errorf("token %q: got %v, want ErrInvalidToken", token, err)
		}
	}
}

func TestVerifyTokenRejectsTampered(t *testing.T) {
	token, err := CreateToken(42)
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}
	tampered := token[:len(token)-2] + "xx"
	if _, err = VerifyToken(tampered); err != ErrInvalidToken {
		t.Errorf("tampered token accepted: %v", err)
	}
}
