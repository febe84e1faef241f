package domain

import "testing"

func TestCanTransition_ForwardOnly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		current StatutSouscription
		next    StatutSouscription
		want    bool
	}{
		{SouscriptionAttentePaiement, SouscriptionAttenteLivraison, true},
		{SouscriptionAttenteLivraison, SouscriptionLivre, true},
		{SouscriptionLivre, SouscriptionCloture, true},
		{SouscriptionAttentePaiement, SouscriptionLivre, false},
		{SouscriptionAttentePaiement, SouscriptionCloture, false},
		{SouscriptionAttenteLivraison, SouscriptionAttentePaiement, false},
		{SouscriptionLivre, SouscriptionAttenteLivraison, false},
		{SouscriptionCloture, SouscriptionLivre, false},
		{SouscriptionCloture, SouscriptionCloture, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.current, tc.next); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.current, tc.next, got, tc.want)
		}
	}
}

func TestActionAllowed_FullMatrix(t *testing.T) {
	t.Parallel()

	roles := []Role{RoleAdminGenerale, RoleAgentBoaz, RoleBailleur, RoleClient}
	statuses := []StatutSouscription{
		SouscriptionAttentePaiement,
		SouscriptionAttenteLivraison,
		SouscriptionLivre,
		SouscriptionCloture,
	}

	for _, role := range roles {
		for _, statut := range statuses {
			editable := statut == SouscriptionAttentePaiement || statut == SouscriptionAttenteLivraison
			if got := ActionAllowed(ActionModifier, role, statut); got != editable {
				t.Errorf("modifier %s/%s = %v, want %v", role, statut, got, editable)
			}
			if got := ActionAllowed(ActionPayer, role, statut); got != (statut == SouscriptionAttentePaiement) {
				t.Errorf("payer %s/%s = %v", role, statut, got)
			}
			wantLivrer := role == RoleAdminGenerale && statut == SouscriptionAttenteLivraison
			if got := ActionAllowed(ActionLivrer, role, statut); got != wantLivrer {
				t.Errorf("livrer %s/%s = %v, want %v", role, statut, got, wantLivrer)
			}
			if got := ActionAllowed(ActionAttestation, role, statut); got != (role == RoleAdminGenerale) {
				t.Errorf("attestation %s/%s = %v", role, statut, got)
			}
			if !ActionAllowed(ActionEnvoyerProforma, role, statut) {
				t.Errorf("envoyer_proforma %s/%s should always be visible", role, statut)
			}
			if !ActionAllowed(ActionSupprimer, role, statut) {
				t.Errorf("supprimer %s/%s should always be visible", role, statut)
			}
		}
	}
}

func TestAllowedActions_AdminOnAttenteLivraison(t *testing.T) {
	t.Parallel()

	got := AllowedActions(RoleAdminGenerale, SouscriptionAttenteLivraison)
	want := []SouscriptionAction{ActionModifier, ActionLivrer, ActionAttestation, ActionEnvoyerProforma, ActionSupprimer}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestHomeRoute(t *testing.T) {
	t.Parallel()

	cases := map[Role]string{
		RoleAdminGenerale: "/admin-dashboard",
		RoleAgentBoaz:     "/agent-dashboard",
		RoleBailleur:      "/bailleur-dashboard",
		RoleClient:        "/client-dashboard",
		Role("inconnu"):   "/",
	}
	for role, want := range cases {
		if got := role.HomeRoute(); got != want {
			t.Errorf("HomeRoute(%s) = %s, want %s", role, got, want)
		}
	}
}

func TestParseRole_Unknown(t *testing.T) {
	t.Parallel()

	if _, err := ParseRole("superadmin"); err == nil {
		t.Fatal("expected error for unknown role")
	}
	role, err := ParseRole("agent-boaz")
	if err != nil {
		t.Fatalf("ParseRole error: %v", err)
	}
	if role != RoleAgentBoaz {
		t.Fatalf("got %s", role)
	}
}
