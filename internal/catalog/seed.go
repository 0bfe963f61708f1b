package catalog

import (
	"fmt"
	"math/rand/v2"
	"time"

	domain "github.com/donaldgifford/apidex/pkg/types"
)

var (
	seedCategories = []string{"Weather", "Maps", "Payments", "Messaging", "Finance", "Media", "AI", "Sports"}
	seedNouns      = []string{"Cloud", "Stream", "Pulse", "Bridge", "Atlas", "Nova", "Relay", "Forge"}
	seedPricing    = []string{"FREE", "FREEMIUM", "PAID"}
	seedAuth       = []string{"API_KEY", "OAUTH2", "NONE"}
)

// seedEpoch anchors generated creation dates so seeded catalogs are stable.
var seedEpoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// Seed generates n APIs deterministically from seed. Every non-free API gets
// pricing plans; roughly one in ten free APIs publishes none.
func Seed(n int, seed uint64) *Catalog {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) //nolint:gosec // test data

	apis := make([]domain.API, 0, n)
	pricing := make([]domain.Pricing, 0, n)
	for i := range n {
		id := int64(i + 1)
		category := seedCategories[r.IntN(len(seedCategories))]
		kind := seedPricing[r.IntN(len(seedPricing))]

		apis = append(apis, domain.API{
			APIID:         id,
			Name:          fmt.Sprintf("%s %s %d", category, seedNouns[r.IntN(len(seedNouns))], id),
			Description:   fmt.Sprintf("%s data and tooling over a REST interface.", category),
			Category:      category,
			Rating:        float64(r.IntN(41)+10) / 10,
			ReviewCount:   r.IntN(500),
			FavoriteCount: r.IntN(1000),
			PricingType:   kind,
			AuthType:      seedAuth[r.IntN(len(seedAuth))],
			ThumbnailURL:  fmt.Sprintf("https://cdn.example.com/apis/%d.png", id),
			CreatedAt:     seedEpoch.Add(time.Duration(r.IntN(700*24)) * time.Hour),
		})

		if kind == "FREE" && r.IntN(10) == 0 {
			continue
		}
		pricing = append(pricing, seedPlans(id, kind, r))
	}
	return New(apis, pricing)
}

func seedPlans(id int64, kind string, r *rand.Rand) domain.Pricing {
	p := domain.Pricing{
		APIID:       id,
		PricingType: kind,
		PricingURL:  fmt.Sprintf("https://apis.example.com/%d/pricing", id),
	}
	switch kind {
	case "FREE":
		p.Plans = []domain.PricingPlan{
			{Name: "Free", Price: 0, Currency: "USD", Period: "month", Features: []string{"1,000 calls"}},
		}
	case "FREEMIUM":
		p.Plans = []domain.PricingPlan{
			{Name: "Free", Price: 0, Currency: "USD", Period: "month", Features: []string{"500 calls"}},
			{Name: "Pro", Price: float64(5 + r.IntN(45)), Currency: "USD", Period: "month", Features: []string{"50,000 calls", "email support"}},
		}
	default:
		base := float64(10 + r.IntN(90))
		p.Plans = []domain.PricingPlan{
			{Name: "Starter", Price: base, Currency: "USD", Period: "month", Features: []string{"10,000 calls"}},
			{Name: "Business", Price: base * 4, Currency: "USD", Period: "month", Features: []string{"250,000 calls", "SLA"}},
		}
	}
	return p
}
