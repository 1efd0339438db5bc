// Package domainage tells whether the registrable part of a domain was created
// recently, using WHOIS.
package domainage

import (
	"strings"
	"time"

	tld "github.com/jpillora/go-tld"
	"github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const day = 24 * time.Hour

// Checker compares WHOIS creation dates against a maximum age
type Checker struct {
	MaxAge time.Duration
	Log    *log.Logger

	cache  *cache.Cache
	lookup func(registrable string) (time.Time, error)
	now    func() time.Time
}

// NewChecker returns a Checker treating domains created in the last days days as recent
func NewChecker(days int, logger *log.Logger) *Checker {
	return &Checker{
		MaxAge: time.Duration(days) * day,
		Log:    logger,
		cache:  cache.New(7*day, time.Hour),
		lookup: creationDate,
		now:    time.Now,
	}
}

// IsRecent reports whether domain was registered within MaxAge. A domain whose age
// can't be found is considered recent.
func (c *Checker) IsRecent(domain string) bool {
	registrable, err := Registrable(domain)
	if err != nil {
		c.Log.Warnf("Could not get WHOIS details of domain %s: %v", domain, err)
		return true
	}

	var created time.Time
	if v, found := c.cache.Get(registrable); found {
		created = v.(time.Time)
	} else {
		created, err = c.lookup(registrable)
		if err != nil {
			c.Log.Warnf("Could not get WHOIS details of domain %s: %v", registrable, err)
			return true
		}
		c.cache.Set(registrable, created, cache.DefaultExpiration)
	}
	return c.now().Sub(created) <= c.MaxAge
}

// Registrable returns the domain and public suffix part of name
func Registrable(name string) (string, error) {
	u, err := tld.Parse("https://" + name)
	if err != nil {
		return "", errors.Wrapf(err, "parse %s", name)
	}
	if u == nil || u.Domain == "" || u.TLD == "" {
		return "", errors.Errorf("no registrable domain in %s", name)
	}
	return u.Domain + "." + u.TLD, nil
}

// creationDate queries WHOIS for the creation date of registrable
func creationDate(registrable string) (time.Time, error) {
	raw, err := whois.Whois(registrable)
	if err != nil {
		return time.Time{}, errors.Wrap(err, "whois")
	}
	result, err := whoisparser.Parse(raw)
	if err != nil {
		return time.Time{}, errors.Wrap(err, "parse whois")
	}
	if result.Domain == nil || result.Domain.CreatedDate == "" {
		return time.Time{}, errors.New("no creation date")
	}
	return ParseDate(result.Domain.CreatedDate)
}

// ParseDate reads the date part of a WHOIS timestamp such as 2006-01-02T15:04:05Z
func ParseDate(s string) (time.Time, error) {
	d := strings.Split(strings.TrimSpace(s), "T")[0]
	t, err := time.Parse("2006-01-02", d)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "creation date %q", s)
	}
	return t, nil
}
