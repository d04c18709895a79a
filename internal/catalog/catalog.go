// Package catalog defines the restaurant and menu domain.
package catalog

import "context"

// Restaurant is a listed restaurant as served to storefront clients.
type Restaurant struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Cuisine     string  `json:"cuisine"`
	Rating      float64 `json:"rating"`
	Image       string  `json:"image"`
	Description string  `json:"description"`
}

// MenuItem is a purchasable dish belonging to one restaurant.
type MenuItem struct {
	ID           int64   `json:"id"`
	RestaurantID int64   `json:"restaurant_id"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	Image        string  `json:"image"`
	Category     string  `json:"category"`
}

// Storage loads catalog records.
//
// GetRestaurant returns storage.ErrNotFound when the id is unknown. ListMenu
// returns an empty slice, not an error, for a restaurant without dishes.
type Storage interface {
	ListRestaurants(ctx context.Context) ([]Restaurant, error)
	GetRestaurant(ctx context.Context, id int64) (Restaurant, error)
	ListMenu(ctx context.Context, restaurantID int64) ([]MenuItem, error)
}
