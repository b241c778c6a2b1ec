package service

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/quotable/quotes-platform/internal/api/metrics"
	"github.com/quotable/quotes-platform/internal/core/domain"
	"github.com/quotable/quotes-platform/internal/core/ports"
)

type registrationFixture struct {
	users     *stubUserRepo
	tokens    *stubTokenRepo
	identity  *stubIdentity
	cooldowns *stubCooldowns
	mailer    *stubMailer
	audit     *stubAudit
	svc       ports.RegistrationService
}

func newRegistrationFixture() *registrationFixture {
	f := &registrationFixture{
		users:     newStubUserRepo(),
		tokens:    newStubTokenRepo(),
		identity:  newStubIdentity(),
		cooldowns: newStubCooldowns(),
		mailer:    &stubMailer{},
		audit:     &stubAudit{},
	}
	f.svc = NewRegistrationService(
		f.users, f.tokens, f.identity, f.cooldowns, f.mailer, f.audit,
		NewEmailChecker(resolverWithMX()), zerolog.Nop(),
	)
	return f
}

func validInput() ports.RegisterInput {
	return ports.RegisterInput{
		Email:       "ada@example.net",
		Password:    "Str0ng!pass",
		DisplayName: "Ada",
		Provenance:  domain.Provenance{IP: "203.0.113.7", UserAgent: "test"},
	}
}

func TestRegisterCreatesPendingGuest(t *testing.T) {
	f := newRegistrationFixture()

	user, err := f.svc.Register(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Role != domain.RoleGuest {
		t.Errorf("role = %s, want guest", user.Role)
	}
	if user.Status != domain.StatusPending {
		t.Errorf("status = %s, want pending", user.Status)
	}
	if user.EmailVerified {
		t.Error("new account must start unverified")
	}
	if !user.Permissions.Has(domain.PermRead) || user.Permissions.Has(domain.PermWrite) {
		t.Errorf("permissions = %v, want guest defaults", user.Permissions)
	}
	if user.RegistrationIP != "203.0.113.7" {
		t.Errorf("registration ip = %q", user.RegistrationIP)
	}

	if len(f.tokens.outstanding(user.ID, domain.PurposeEmailVerification)) != 1 {
		t.Fatal("expected one outstanding verification token")
	}
	code := f.mailer.lastCode()
	if code == "" {
		t.Fatal("no verification code delivered")
	}
	stored := f.tokens.outstanding(user.ID, domain.PurposeEmailVerification)[0]
	if stored.TokenHash != domain.HashTokenCode(code) {
		t.Error("stored hash does not match the delivered code")
	}
	if stored.TokenHash == code {
		t.Error("raw code must never be stored")
	}
}

func TestRegisterMissingFields(t *testing.T) {
	f := newRegistrationFixture()
	for _, in := range []ports.RegisterInput{
		{Password: "Str0ng!pass", DisplayName: "Ada"},
		{Email: "ada@example.net", DisplayName: "Ada"},
		{Email: "ada@example.net", Password: "Str0ng!pass"},
	} {
		if _, err := f.svc.Register(context.Background(), in); !errors.Is(err, domain.ErrMissingFields) {
			t.Errorf("Register(%+v) = %v, want ErrMissingFields", in, err)
		}
	}
}

func TestRegisterRejectsBadEmailAndWeakPassword(t *testing.T) {
	f := newRegistrationFixture()

	in := validInput()
	in.Email = "ada@mailinator.com"
	if _, err := f.svc.Register(context.Background(), in); !errors.Is(err, domain.ErrInvalidEmail) {
		t.Errorf("disposable domain: err = %v, want ErrInvalidEmail", err)
	}

	in = validInput()
	in.Password = "alllowercase1!"
	if _, err := f.svc.Register(context.Background(), in); !errors.Is(err, domain.ErrWeakPassword) {
		t.Errorf("weak password: err = %v, want ErrWeakPassword", err)
	}
}

func TestRegisterDuplicateSplitsOnVerification(t *testing.T) {
	f := newRegistrationFixture()
	if _, err := f.svc.Register(context.Background(), validInput()); err != nil {
		t.Fatalf("seed register: %v", err)
	}

	// Unverified duplicate: the resend hint, not the generic conflict.
	if _, err := f.svc.Register(context.Background(), validInput()); !errors.Is(err, domain.ErrPendingVerification) {
		t.Fatalf("unverified duplicate: err = %v, want ErrPendingVerification", err)
	}

	u, _ := f.users.FindByEmail(context.Background(), "ada@example.net")
	u.EmailVerified = true
	if err := f.users.Update(context.Background(), u); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Register(context.Background(), validInput()); !errors.Is(err, domain.ErrEmailExists) {
		t.Fatalf("verified duplicate: err = %v, want ErrEmailExists", err)
	}
}

func TestRegisterDuplicateCheckFailureCounted(t *testing.T) {
	f := newRegistrationFixture()
	f.users.findEmailErr = errBoom
	f.identity.createErr = errBoom // must never be reached

	before := testutil.ToFloat64(metrics.RegistrationsTotal.WithLabelValues("error"))
	if _, err := f.svc.Register(context.Background(), validInput()); !errors.Is(err, errBoom) {
		t.Fatalf("err = %v, want the store error passed through", err)
	}
	after := testutil.ToFloat64(metrics.RegistrationsTotal.WithLabelValues("error"))
	if after != before+1 {
		t.Errorf("error outcome count = %v, want %v", after, before+1)
	}
}

func TestRegisterRollsBackOnStoreFailure(t *testing.T) {
	f := newRegistrationFixture()
	f.users.createErr = errBoom

	_, err := f.svc.Register(context.Background(), validInput())
	if !errors.Is(err, errBoom) {
		t.Fatalf("err = %v, want the original store failure", err)
	}

	// The half-created identity must be reversed and no record may remain.
	if len(f.identity.deleted) != 1 || f.identity.deleted[0] != "subj-1" {
		t.Errorf("identity deletes = %v, want [subj-1]", f.identity.deleted)
	}
	if _, err := f.users.FindByEmail(context.Background(), "ada@example.net"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Error("credential record survived a rolled-back registration")
	}
}

func TestRegisterRollsBackOnTokenFailure(t *testing.T) {
	f := newRegistrationFixture()
	f.tokens.createErr = errBoom

	if _, err := f.svc.Register(context.Background(), validInput()); !errors.Is(err, errBoom) {
		t.Fatalf("err = %v, want the token failure", err)
	}
	if len(f.identity.deleted) != 1 {
		t.Error("identity not rolled back after token issuance failure")
	}
	if _, err := f.users.FindByID(context.Background(), "subj-1"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Error("credential record not rolled back after token issuance failure")
	}
}

func TestResendVerificationCooldown(t *testing.T) {
	f := newRegistrationFixture()
	if _, err := f.svc.Register(context.Background(), validInput()); err != nil {
		t.Fatal(err)
	}

	if err := f.svc.ResendVerification(context.Background(), "ada@example.net", domain.Provenance{}); err != nil {
		t.Fatalf("first resend: %v", err)
	}
	if err := f.svc.ResendVerification(context.Background(), "ada@example.net", domain.Provenance{}); !errors.Is(err, domain.ErrCooldownActive) {
		t.Fatalf("second resend: err = %v, want ErrCooldownActive", err)
	}
}

func TestResendVerificationSupersedesOldToken(t *testing.T) {
	f := newRegistrationFixture()
	user, err := f.svc.Register(context.Background(), validInput())
	if err != nil {
		t.Fatal(err)
	}
	firstCode := f.mailer.lastCode()

	if err := f.svc.ResendVerification(context.Background(), "ada@example.net", domain.Provenance{}); err != nil {
		t.Fatal(err)
	}

	out := f.tokens.outstanding(user.ID, domain.PurposeEmailVerification)
	if len(out) != 1 {
		t.Fatalf("outstanding tokens = %d, want exactly 1 after supersede", len(out))
	}
	if out[0].TokenHash == domain.HashTokenCode(firstCode) {
		t.Error("old token survived; resend must invalidate earlier deliveries")
	}
}

func TestResendVerificationUnknownEmailLooksLikeSuccess(t *testing.T) {
	f := newRegistrationFixture()

	if err := f.svc.ResendVerification(context.Background(), "nobody@example.net", domain.Provenance{}); err != nil {
		t.Fatalf("unknown email must be indistinguishable from success, got %v", err)
	}
	// The cooldown still applies, so probing the same address is rate-gated.
	if err := f.svc.ResendVerification(context.Background(), "nobody@example.net", domain.Provenance{}); !errors.Is(err, domain.ErrCooldownActive) {
		t.Fatalf("err = %v, want ErrCooldownActive", err)
	}
}

func TestRequestPasswordResetIssuesResetToken(t *testing.T) {
	f := newRegistrationFixture()
	user, err := f.svc.Register(context.Background(), validInput())
	if err != nil {
		t.Fatal(err)
	}

	if err := f.svc.RequestPasswordReset(context.Background(), "ada@example.net", domain.Provenance{}); err != nil {
		t.Fatal(err)
	}
	out := f.tokens.outstanding(user.ID, domain.PurposePasswordReset)
	if len(out) != 1 {
		t.Fatalf("reset tokens = %d, want 1", len(out))
	}
	if got := out[0].ExpiresAt.Sub(out[0].IssuedAt); got != domain.ResetTokenTTL {
		t.Errorf("reset token lifetime = %v, want %v", got, domain.ResetTokenTTL)
	}

	if err := f.svc.RequestPasswordReset(context.Background(), "ada@example.net", domain.Provenance{}); !errors.Is(err, domain.ErrCooldownActive) {
		t.Fatalf("repeat reset request: err = %v, want ErrCooldownActive", err)
	}
}
