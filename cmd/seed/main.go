package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/chachabrian/carrental-backend/internal/config"
	"github.com/chachabrian/carrental-backend/internal/database"
	"github.com/chachabrian/carrental-backend/internal/models"
)

type sample struct {
	input    models.CarInput
	provider models.Identity
}

func price(v float64) *float64 { return &v }

var samples = []sample{
	{
		models.CarInput{
			CarName:     "Tesla Model 3",
			Description: "Luxury electric sedan with autopilot, premium interior, and long range battery. Perfect for city driving and long trips with zero emissions.",
			Category:    "Electric",
			RentPrice:   price(8500),
			Location:    "Dhaka, Bangladesh",
			ImageURL:    "https://images.unsplash.com/photo-1560958089-b8a1929cea89?w=800&q=80",
		},
		models.Identity{Name: "Karim Ahmed", Email: "karim@example.com"},
	},
	{
		models.CarInput{
			CarName:     "BMW X5",
			Description: "Spacious luxury SUV with premium leather seats, advanced safety features, and powerful engine. Ideal for family trips and outdoor adventures.",
			Category:    "SUV",
			RentPrice:   price(12000),
			Location:    "Chittagong, Bangladesh",
			ImageURL:    "https://images.unsplash.com/photo-1555215695-3004980ad54e?w=800&q=80",
		},
		models.Identity{Name: "Fatima Rahman", Email: "fatima@example.com"},
	},
	{
		models.CarInput{
			CarName:     "Mercedes-Benz C-Class",
			Description: "Elegant sedan with sophisticated design, comfortable ride, and cutting-edge technology. Perfect for business travel and special occasions.",
			Category:    "Luxury",
			RentPrice:   price(15000),
			Location:    "Sylhet, Bangladesh",
			ImageURL:    "https://images.unsplash.com/photo-1618843479313-40f8afb4b4d8?w=800&q=80",
		},
		models.Identity{Name: "Rashid Khan", Email: "rashid@example.com"},
	},
	{
		models.CarInput{
			CarName:     "Honda Civic",
			Description: "Reliable and fuel-efficient sedan with modern features and comfortable interior. Great for daily commuting and city driving.",
			Category:    "Sedan",
			RentPrice:   price(5000),
			Location:    "Dhaka, Bangladesh",
			ImageURL:    "https://images.unsplash.com/photo-1590362891991-f776e747a588?w=800&q=80",
		},
		models.Identity{Name: "Nadia Islam", Email: "nadia@example.com"},
	},
	{
		models.CarInput{
			CarName:     "Toyota RAV4",
			Description: "Versatile compact SUV with excellent fuel economy, spacious cargo area, and all-wheel drive capability. Perfect for weekend getaways.",
			Category:    "SUV",
			RentPrice:   price(7500),
			Location:    "Rajshahi, Bangladesh",
			ImageURL:    "https://images.unsplash.com/photo-1581540222194-0def2dda95b8?w=800&q=80",
		},
		models.Identity{Name: "Imran Hossain", Email: "imran@example.com"},
	},
	{
		models.CarInput{
			CarName:     "Audi A4",
			Description: "Premium sedan with sporty performance, luxurious interior, and advanced driver assistance systems. Ideal for those who appreciate quality.",
			Category:    "Luxury",
			RentPrice:   price(13000),
			Location:    "Khulna, Bangladesh",
			ImageURL:    "https://images.unsplash.com/photo-1606664515524-ed2f786a0bd6?w=800&q=80",
		},
		models.Identity{Name: "Ayesha Begum", Email: "ayesha@example.com"},
	},
	{
		models.CarInput{
			CarName:     "Ford Mustang",
			Description: "Iconic American muscle car with powerful V8 engine, sporty design, and thrilling performance. Perfect for an unforgettable driving experience.",
			Category:    "Luxury",
			RentPrice:   price(14000),
			Location:    "Dhaka, Bangladesh",
			ImageURL:    "https://images.unsplash.com/photo-1584345604476-8ec5f5e8e8b6?w=800&q=80",
		},
		models.Identity{Name: "Tariq Mahmud", Email: "tariq@example.com"},
	},
	{
		models.CarInput{
			CarName:     "Nissan Leaf",
			Description: "Affordable electric hatchback with impressive range, modern technology, and eco-friendly operation. Great for environmentally conscious drivers.",
			Category:    "Electric",
			RentPrice:   price(6000),
			Location:    "Barisal, Bangladesh",
			ImageURL:    "https://images.unsplash.com/photo-1593941707882-a5bba14938c7?w=800&q=80",
		},
		models.Identity{Name: "Sabrina Akter", Email: "sabrina@example.com"},
	},
	{
		models.CarInput{
			CarName:     "Volkswagen Golf",
			Description: "Compact and practical hatchback with excellent handling, comfortable interior, and great fuel efficiency. Perfect for urban driving.",
			Category:    "Hatchback",
			RentPrice:   price(5500),
			Location:    "Comilla, Bangladesh",
			ImageURL:    "https://images.unsplash.com/photo-1552519507-da3b142c6e3d?w=800&q=80",
		},
		models.Identity{Name: "Fahim Ahmed", Email: "fahim@example.com"},
	},
	{
		models.CarInput{
			CarName:     "Jeep Wrangler",
			Description: "Rugged off-road SUV with removable top, 4x4 capability, and adventurous spirit. Ideal for outdoor enthusiasts and trail exploration.",
			Category:    "SUV",
			RentPrice:   price(11000),
			Location:    "Cox's Bazar, Bangladesh",
			ImageURL:    "https://images.unsplash.com/photo-1606220838315-056192d5e927?w=800&q=80",
		},
		models.Identity{Name: "Mehedi Hassan", Email: "mehedi@example.com"},
	},
}

// sampleCars builds the listings, spacing createdAt so "newest" ordering
// is stable.
func sampleCars(now time.Time) ([]*models.Car, error) {
	cars := make([]*models.Car, 0, len(samples))
	for i, s := range samples {
		in := s.input
		if err := in.Validate(); err != nil {
			return nil, fmt.Errorf("sample %q: %w", in.CarName, err)
		}
		cars = append(cars, models.NewCar(in, s.provider, now.Add(-time.Duration(i)*time.Minute)))
	}
	return cars, nil
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := database.InitDB(ctx, cfg.Mongo)
	if err != nil {
		return err
	}
	defer db.Close(context.Background())

	if err := database.RunMigrations(ctx, db); err != nil {
		return err
	}

	store := database.NewCarStore(db)
	n, err := store.Count(ctx)
	if err != nil {
		return fmt.Errorf("count cars: %w", err)
	}
	if n > 0 {
		slog.Info("cars collection is not empty, skipping seed", "count", n)
		return nil
	}

	cars, err := sampleCars(time.Now().UTC())
	if err != nil {
		return err
	}
	if err := store.InsertMany(ctx, cars); err != nil {
		return err
	}
	for _, c := range cars {
		slog.Info("seeded car", "id", c.ID.Hex(), "name", c.CarName, "price", c.RentPrice, "location", c.Location)
	}
	slog.Info("database seeded", "cars", len(cars))
	return nil
}

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := run(ctx); err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
}
