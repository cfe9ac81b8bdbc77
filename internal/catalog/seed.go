package catalog

import (
	"context"

	"github.com/armory-market/armory-backend/pkg/db/models"
	"github.com/armory-market/armory-backend/pkg/enums"
)

// seedListings is the launch catalog. Rows are upserted with do-nothing
// conflict handling so restarts never clobber live stock counts.
var seedListings = []models.Product{
	{
		ID:            "1",
		Name:          "Shadow Glock",
		NameLocal:     "그림자 글록",
		Description:   "Quiet but deadly. +50 Stealth.",
		Lore:          "Forged in a workshop that officially never existed.",
		PriceUnits:    2500,
		Category:      enums.ProductCategoryPistol,
		Damage:        45,
		FireRate:      70,
		Weight:        12,
		IsRecommended: true,
	},
	{
		ID:          "2",
		Name:        "C4 Plastic Explosive",
		NameLocal:   "C4 폭탄",
		Description: "Clears the room in 1 second. Area Damage 100%.",
		Lore:        "Ships with a sticker that says handle with care, ignored by everyone.",
		PriceUnits:  4500,
		Category:    enums.ProductCategoryExplosive,
		Damage:      100,
		FireRate:    5,
		Weight:      30,
	},
	{
		ID:          "3",
		Name:        "Rusty Chainsaw",
		NameLocal:   "녹슨 전기톱",
		Description: "For close-range terror. Causes 'Bleeding' effect.",
		Lore:        "The rust is load-bearing.",
		PriceUnits:  3200,
		Category:    enums.ProductCategoryMelee,
		Damage:      65,
		FireRate:    40,
		Weight:      55,
	},
	{
		ID:            "4",
		Name:          "Dark Katana",
		NameLocal:     "암흑 카타나",
		Description:   "Slices through armor. Ignore Defense 30%.",
		Lore:          "Folded a thousand times, sharpened once.",
		PriceUnits:    5800,
		Category:      enums.ProductCategoryBlade,
		Damage:        80,
		FireRate:      60,
		Weight:        18,
		IsRecommended: true,
	},
	{
		ID:          "5",
		Name:        "The Annihilator (RPG-7)",
		NameLocal:   "섬멸자 (RPG-7)",
		Description: "One shot, mass casualty. Cooldown: 60s.",
		Lore:        "Subtlety sold separately.",
		PriceUnits:  12000,
		Category:    enums.ProductCategoryLauncher,
		Damage:      100,
		FireRate:    2,
		Weight:      85,
	},
	{
		ID:            "6",
		Name:          "Death Crossbow",
		NameLocal:     "죽음의 석궁",
		Description:   "Silent and precise. +75 Accuracy.",
		Lore:          "Every bolt comes back with a story.",
		PriceUnits:    6500,
		Category:      enums.ProductCategoryCrossbow,
		Damage:        70,
		FireRate:      25,
		Weight:        22,
		IsRecommended: true,
	},
}

// Seed installs the launch catalog into an empty or partially seeded table.
func (r *Repository) Seed(ctx context.Context) error {
	for i := range seedListings {
		listing := seedListings[i]
		if err := r.Upsert(ctx, &listing); err != nil {
			return err
		}
	}
	return nil
}
