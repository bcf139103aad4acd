package catalog

import "nearby_market/internal/domain"

// Dummy records and directories. Values are placeholders; what matters is
// that phones and images are resolved by listing id.

var Beauty = Category{
	Slug:        "beauty",
	Name:        "Beauty",
	Title:       "Beauty Parlour",
	Description: "Salon and wellness services near you",
	Glyph:       "💇",
	Services:    []string{"Haircut", "Facial", "Manicure", "Pedicure", "Waxing"},
	Phones: domain.PhoneDirectory{
		"beauty_1": "+91 98100 11111",
		"beauty_2": "+91-98100-22222",
	},
	Images: domain.ImageDirectory{
		"beauty_1": {
			"https://images.unsplash.com/photo-1560066984-138dadb4c035",
			"https://images.unsplash.com/photo-1522337360788-8b13dee7a37e",
			"https://images.unsplash.com/photo-1633681926022-84c23e8cb2d6",
		},
		"beauty_2": {"https://images.unsplash.com/photo-1600948836101-f9ffda59d250"},
	},
	Fixtures: []map[string]any{
		{
			"id": "beauty_1", "name": "Glow Beauty Studio", "vicinity": "Sector 18, Noida",
			"distance": 1.2, "rating": "4.6", "user_ratings_total": 212,
			"opening_hours": map[string]any{"open_now": true},
			"geometry":      map[string]any{"location": map[string]any{"lat": 28.5708, "lng": 77.3261}},
			"tags":          []any{"Trending", "Verified"},
			"amenities":     []any{"Haircut", "Facial", "Bridal Makeup", "Spa", "Nail Art"},
		},
		{
			"id": "beauty_2", "name": "Urban Spa & Salon", "vicinity": "Connaught Place, New Delhi",
			"distance": "2.8", "rating": 4.2, "user_ratings_total": "87",
			"opening_hours": map[string]any{"open_now": false},
			"geometry":      map[string]any{"location": map[string]any{"lat": 28.6315, "lng": 77.2167}},
			"tags":          []any{"Top Rated", "Quick Response"},
			"amenities":     []any{"Massage", "Waxing"},
		},
	},
}

var Shopping = Category{
	Slug:        "shopping",
	Name:        "Shopping",
	Title:       "Store",
	Description: "Retail stores and markets around you",
	Glyph:       "🛍️",
	Services:    []string{"Home Delivery", "Card Payment", "Exchange"},
	Phones: domain.PhoneDirectory{
		"mobile_store_1": "+91 99110 10101",
		"mobile_store_3": "+91 99110 30303",
	},
	Images: domain.ImageDirectory{
		"mobile_store_1": {
			"https://images.unsplash.com/photo-1556740738-b6a63e27c4df",
			"https://images.unsplash.com/photo-1512499617640-c74ae3a79d37",
		},
		"mobile_store_3": {"https://images.unsplash.com/photo-1601784551446-20c9e07cdbdb"},
	},
	Fixtures: []map[string]any{
		{
			"id": "mobile_store_1", "name": "City Mobile Hub", "vicinity": "Karol Bagh, New Delhi",
			"distance": 0.9, "rating": 4.4, "user_ratings_total": 530,
			"geometry":  map[string]any{"location": map[string]any{"lat": 28.6519, "lng": 77.1909}},
			"tags":      []any{"Popular", "JD Verified"},
			"amenities": []any{"Accessories", "Repairs", "EMI Available", "Exchange"},
		},
		{
			"id": "mobile_store_2", "name": "Gadget Point", "vicinity": "Lajpat Nagar, New Delhi",
			"distance": "3.4", "rating": "3.9",
			"tags": []any{"Top Search"},
		},
		{
			"id": "mobile_store_3", "name": "Phone Bazaar", "address": "Nehru Place, New Delhi",
			"distance": 5.1, "openNow": true,
			"location": map[string]any{"lat": 28.5494, "lng": 77.2519},
			"tags":     []any{"Trust"},
		},
	},
}

var Sports = Category{
	Slug:        "sports",
	Name:        "Sports",
	Title:       "Sports Facility",
	Description: "Courts, turfs and academies",
	Glyph:       "🏸",
	Services:    []string{"Coaching", "Equipment Rental", "Floodlights"},
	Phones: domain.PhoneDirectory{
		"sports_1": "+91 98711 12121",
	},
	Images: domain.ImageDirectory{
		"sports_1": {
			"https://images.unsplash.com/photo-1626224583764-f87db24ac4ea",
			"https://images.unsplash.com/photo-1554068865-24cecd4e34b8",
		},
	},
	Fixtures: []map[string]any{
		{
			"id": "sports_1", "name": "Smash Badminton Arena", "vicinity": "Dwarka Sector 10",
			"distance": 2.3, "rating": 4.7, "user_ratings_total": 98,
			"opening_hours": map[string]any{"open_now": true},
			"geometry":      map[string]any{"location": map[string]any{"lat": 28.5823, "lng": 77.0500}},
			"tags":          []any{"Top Rated", "Responsive"},
			"amenities":     []any{"Coaching", "Parking", "Showers", "Cafe", "Pro Shop"},
		},
		{
			"id": "sports_2", "name": "Greenfield Turf", "vicinity": "Vasant Kunj",
			"distance": 4.0, "rating": 4.1,
			"tags": []any{"Popular"},
		},
	},
}

var Art = Category{
	Slug:        "art",
	Name:        "Art",
	Title:       "Art Studio",
	Description: "Galleries, classes and framing",
	Glyph:       "🎨",
	Services:    []string{"Workshops", "Framing", "Commissions"},
	Phones: domain.PhoneDirectory{
		"art_1": "+91 98999 45454",
	},
	Images: domain.ImageDirectory{
		"art_1": {"https://images.unsplash.com/photo-1513364776144-60967b0f800f"},
	},
	Fixtures: []map[string]any{
		{
			"id": "art_1", "name": "Canvas & Co.", "vicinity": "Hauz Khas Village",
			"distance": 1.8, "rating": 4.8, "user_ratings_total": 41,
			"geometry":  map[string]any{"location": map[string]any{"lat": 28.5535, "lng": 77.1947}},
			"tags":      []any{"Trending"},
			"amenities": []any{"Painting Classes", "Pottery"},
		},
	},
}

var Hotels = Category{
	Slug:        "hotels",
	Name:        "Hotel",
	Title:       "Hotel",
	Description: "Stays and rooms nearby",
	Glyph:       "🏨",
	Services:    []string{"Free WiFi", "Breakfast", "Parking", "Room Service"},
	Phones: domain.PhoneDirectory{
		"hotel_1": "+91 11 4000 5000",
	},
	Images: domain.ImageDirectory{
		"hotel_1": {
			"https://images.unsplash.com/photo-1566073771259-6a8506099945",
			"https://images.unsplash.com/photo-1582719478250-c89cae4dc85b",
		},
	},
	Fixtures: []map[string]any{
		{
			"id": "hotel_1", "name": "The Residency", "vicinity": "Paharganj, New Delhi",
			"distance": 3.2, "rating": 4.0, "user_ratings_total": 1204,
			"geometry":  map[string]any{"location": map[string]any{"lat": 28.6448, "lng": 77.2167}},
			"tags":      []any{"JD Trust", "Popular"},
			"amenities": []any{"Free WiFi", "Pool", "Gym", "Restaurant", "Bar"},
		},
	},
}

var Digital = Category{
	Slug:        "digital",
	Name:        "Digital",
	Title:       "Digital Service",
	Description: "Web, design and marketing professionals",
	Glyph:       "💻",
	Services:    []string{"Web Design", "SEO", "Social Media"},
	Fixtures: []map[string]any{
		{
			"id": "digital_1", "name": "PixelCraft Agency", "vicinity": "Gurugram Cyber City",
			"rating": 4.5, "tags": []any{"Verified", "Quick Response"},
		},
	},
}
