package auth

import "testing"

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(7, "storekeeper-frank", 3, "storekeeper", []string{PermAdjustStock, PermTransferStock})
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != 7 || claims.Username != "storekeeper-frank" || claims.CompanyID != 3 {
		t.Errorf("claims = %d/%q/%d, want 7/storekeeper-frank/3", claims.UserID, claims.Username, claims.CompanyID)
	}

	actor := claims.Actor()
	if actor.UserID != 7 || len(actor.Permissions) != 2 {
		t.Errorf("actor = %+v, want identity and permissions carried over", actor)
	}
}

func TestValidateToken_Garbage(t *testing.T) {
	if _, err := ValidateToken("not-a-token"); err == nil {
		t.Error("expected error for malformed token")
	}
}

func TestClaimsAuthorizer(t *testing.T) {
	authz := NewClaimsAuthorizer()
	actor := Actor{Username: "tech-dave", Permissions: []string{PermCreateRequest}}

	if !authz.CanPerform(actor, PermCreateRequest) {
		t.Error("granted capability denied")
	}
	if authz.CanPerform(actor, PermApproveRequest) {
		t.Error("missing capability granted")
	}
	if authz.CanPerform(Actor{}, PermCreateRequest) {
		t.Error("empty claim set granted a capability")
	}
}
