package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/mail"
	"strings"
	"time"
	"unicode"

	"github.com/quotable/quotes-platform/internal/core/domain"
)

const dnsTimeout = 3 * time.Second

// disposableDomains lists known throwaway-email providers rejected at
// registration time.
var disposableDomains = map[string]bool{
	"mailinator.com":    true,
	"guerrillamail.com": true,
	"10minutemail.com":  true,
	"tempmail.com":      true,
	"throwaway.email":   true,
	"yopmail.com":       true,
	"trashmail.com":     true,
	"getnada.com":       true,
	"sharklasers.com":   true,
	"maildrop.cc":       true,
}

// reservedTLDs can never receive real mail (RFC 2606 / RFC 6761).
var reservedTLDs = map[string]bool{
	"test":      true,
	"invalid":   true,
	"localhost": true,
	"example":   true,
	"local":     true,
	"internal":  true,
}

// hostResolver is the slice of net.Resolver the checker needs; injectable for
// tests.
type hostResolver interface {
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// EmailChecker screens registration emails: format, disposable domains,
// reserved TLDs, and a bounded-timeout DNS deliverability probe.
type EmailChecker struct {
	resolver hostResolver
	timeout  time.Duration
}

func NewEmailChecker(resolver hostResolver) *EmailChecker {
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	return &EmailChecker{resolver: resolver, timeout: dnsTimeout}
}

// Check validates a normalized email address. Every rejection wraps
// domain.ErrInvalidEmail with the concrete reason attached for logs.
func (c *EmailChecker) Check(ctx context.Context, email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%w: malformed address", domain.ErrInvalidEmail)
	}

	at := strings.LastIndex(email, "@")
	domainPart := email[at+1:]
	if reservedTLDs[domainPart] {
		return fmt.Errorf("%w: reserved domain %s", domain.ErrInvalidEmail, domainPart)
	}
	if !strings.Contains(domainPart, ".") {
		return fmt.Errorf("%w: bare domain", domain.ErrInvalidEmail)
	}

	if disposableDomains[domainPart] {
		return fmt.Errorf("%w: disposable domain %s", domain.ErrInvalidEmail, domainPart)
	}

	tld := domainPart[strings.LastIndex(domainPart, ".")+1:]
	if reservedTLDs[tld] {
		return fmt.Errorf("%w: reserved TLD %s", domain.ErrInvalidEmail, tld)
	}

	return c.checkDeliverable(ctx, domainPart)
}

// checkDeliverable probes DNS for an MX record, falling back to A/AAAA. The
// probe fails open on resolver unreachability so infrastructure flakiness
// never rejects a legitimate user; only an authoritative not-found rejects.
func (c *EmailChecker) checkDeliverable(ctx context.Context, domainPart string) error {
	probeCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	mxs, err := c.resolver.LookupMX(probeCtx, domainPart)
	if err == nil && len(mxs) > 0 {
		return nil
	}
	if err != nil && !isDNSNotFound(err) {
		return nil // fail open
	}

	hosts, err := c.resolver.LookupHost(probeCtx, domainPart)
	if err == nil && len(hosts) > 0 {
		return nil
	}
	if err != nil && !isDNSNotFound(err) {
		return nil // fail open
	}

	return fmt.Errorf("%w: domain %s has no mail route", domain.ErrInvalidEmail, domainPart)
}

func isDNSNotFound(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr) && dnsErr.IsNotFound
}

// CheckPassword enforces the registration password policy: at least 8
// characters with upper, lower, digit, and symbol classes present.
func CheckPassword(password string) error {
	if len(password) < 8 {
		return domain.ErrWeakPassword
	}
	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}
	if !upper || !lower || !digit || !symbol {
		return domain.ErrWeakPassword
	}
	return nil
}
