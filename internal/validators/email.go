package validators

import (
	"context"
	"net"
	"strings"
	"time"
)

const lookupTimeout = 3 * time.Second

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// EmailDomain returns the part after the last @, or "" when there is none.
func EmailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return strings.ToLower(email[at+1:])
}

// IsEmailDomainValid reports whether the domain of email accepts mail: it has
// an MX record or, failing that, an address record.
func IsEmailDomainValid(email string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()
	return domainResolves(ctx, net.DefaultResolver, EmailDomain(email))
}

func domainResolves(ctx context.Context, r *net.Resolver, domain string) bool {
	if domain == "" {
		return false
	}
	if mx, err := r.LookupMX(ctx, domain); err == nil && len(mx) > 0 {
		return true
	}
	addrs, err := r.LookupIPAddr(ctx, domain)
	return err == nil && len(addrs) > 0
}
