// Package seed loads the demo catalog into an empty database.
package seed

import (
	"context"
	"fmt"

	"github.com/louisbranch/feastly/internal/catalog"
)

// Storage is the slice of persistence the seeder needs.
type Storage interface {
	CountRestaurants(ctx context.Context) (int, error)
	InsertRestaurant(ctx context.Context, r catalog.Restaurant) (int64, error)
	InsertMenuItem(ctx context.Context, item catalog.MenuItem) (int64, error)
}

type fixture struct {
	restaurant catalog.Restaurant
	items      []catalog.MenuItem
}

var fixtures = []fixture{
	{
		restaurant: catalog.Restaurant{
			Name:        "Italian Pizza House",
			Cuisine:     "Italian",
			Rating:      4.5,
			Image:       "res1.jpg",
			Description: "Authentic wood-fired pizzas.",
		},
		items: []catalog.MenuItem{
			{Name: "Margherita Pizza", Price: 1200, Image: "pizza1.jpg", Category: "Pizza"},
			{Name: "Pepperoni Feast", Price: 1500, Image: "pizza2.jpg", Category: "Pizza"},
		},
	},
	{
		restaurant: catalog.Restaurant{
			Name:        "Burger Nation",
			Cuisine:     "American",
			Rating:      4.2,
			Image:       "res2.jpg",
			Description: "Juicy burgers and crispy fries.",
		},
		items: []catalog.MenuItem{
			{Name: "Zinger Burger", Price: 550, Image: "burger1.jpg", Category: "Burger"},
			{Name: "Beef Smash", Price: 850, Image: "burger2.jpg", Category: "Burger"},
		},
	},
	{
		restaurant: catalog.Restaurant{
			Name:        "Desi Spice Hub",
			Cuisine:     "Pakistani",
			Rating:      4.8,
			Image:       "res3.jpg",
			Description: "Traditional spicy karahi and BBQ.",
		},
		items: []catalog.MenuItem{
			{Name: "Chicken Biryani", Price: 450, Image: "biryani.jpg", Category: "Rice"},
			{Name: "Seekh Kabab", Price: 600, Image: "kabab.jpg", Category: "BBQ"},
		},
	},
}

// Run inserts the demo catalog when no restaurants exist yet. It reports
// how many restaurants and menu items were written; a non-empty catalog is
// left alone, making repeated runs safe.
func Run(ctx context.Context, store Storage) (restaurants, items int, err error) {
	if store == nil {
		return 0, 0, fmt.Errorf("storage is required")
	}

	existing, err := store.CountRestaurants(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("count restaurants: %w", err)
	}
	if existing > 0 {
		return 0, 0, nil
	}

	for _, f := range fixtures {
		restaurantID, err := store.InsertRestaurant(ctx, f.restaurant)
		if err != nil {
			return restaurants, items, fmt.Errorf("insert restaurant %q: %w", f.restaurant.Name, err)
		}
		restaurants++

		for _, item := range f.items {
			item.RestaurantID = restaurantID
			if _, err := store.InsertMenuItem(ctx, item); err != nil {
				return restaurants, items, fmt.Errorf("insert menu item %q: %w", item.Name, err)
			}
			items++
		}
	}
	return restaurants, items, nil
}
