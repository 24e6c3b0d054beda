package main

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"hostdesk/internal/services/api/collectives/domain"

	"github.com/google/uuid"
)

var (
	adjectives = []string{"Open", "Green", "Civic", "Tiny", "Mutual", "Free", "Local", "Bright"}
	nouns      = []string{"Garden", "Library", "Compiler", "Commons", "Kitchen", "Radio", "Toolkit", "Archive"}
	currencies = []string{"USD", "EUR", "GBP"}
	epoch      = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
)

// generate builds n collectives for host from seed
// slugs carry the index so they stay unique per host
func generate(host string, n int, seed uint64) []domain.Collective {
	src := rand.NewChaCha8(seedBytes(seed))
	rng := rand.New(src)

	out := make([]domain.Collective, 0, max(n, 0))
	for i := range max(n, 0) {
		id, err := uuid.NewRandomFromReader(src)
		if err != nil {
			id = uuid.New()
		}
		name := adjectives[rng.IntN(len(adjectives))] + " " + nouns[rng.IntN(len(nouns))]

		c := domain.Collective{
			ID:               id.String(),
			HostSlug:         host,
			Slug:             fmt.Sprintf("%s-%d", strings.ToLower(strings.ReplaceAll(name, " ", "-")), i+1),
			Name:             name,
			Type:             domain.TypeCollective,
			HostFeeStructure: domain.FeeDefault,
			IsApproved:       rng.IntN(10) < 8,
			IsFrozen:         rng.IntN(10) == 0,
			IsUnhosted:       rng.IntN(20) == 0,
			BalanceCents:     rng.Int64N(5_000_000),
			Currency:         currencies[rng.IntN(len(currencies))],
			CreatedAt:        epoch.Add(time.Duration(rng.Int64N(int64(5 * 365 * 24 * time.Hour)))),
		}
		if rng.IntN(4) == 0 {
			c.Type = domain.TypeFund
		}
		switch rng.IntN(6) {
		case 0:
			pct := float64(rng.IntN(15) + 1)
			c.HostFeeStructure = domain.FeeCustom
			c.HostFeePercent = &pct
		case 1:
			c.HostFeeStructure = domain.FeeMonthlyRetainer
		}
		out = append(out, c)
	}
	return out
}

func seedBytes(seed uint64) [32]byte {
	var b [32]byte
	for i := range 8 {
		b[i] = byte(seed >> (8 * i))
	}
	return b
}
