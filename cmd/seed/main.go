package main

import (
	"context"
	"errors"
	"log"

	"frontdesk/db"
	"frontdesk/internal/matching"
	"frontdesk/internal/repository"
	"frontdesk/internal/service"
	"frontdesk/pkg/config"
	"frontdesk/pkg/logger"
	"frontdesk/pkg/postgres"

	"go.uber.org/zap"
)

type seedEntry struct {
	pattern string
	answer  string
	tags    []string
}

// Starter corpus for a salon front desk. Existing patterns are skipped so
// the seeder can run repeatedly without clobbering learned answers.
var seedEntries = []seedEntry{
	{
		pattern: "What are your business hours?",
		answer:  "We are open Tuesday through Friday from 10 AM to 7 PM, Saturday from 9 AM to 8 PM, and Sunday from 10 AM to 6 PM. We are closed on Mondays.",
		tags:    []string{"hours", "schedule", "timing", "open", "closed", "time", "when", "monday"},
	},
	{
		pattern: "How much does a haircut cost?",
		answer:  "Our haircut prices start at $45 for a basic cut. Styling packages range from $65 to $120 depending on length and complexity.",
		tags:    []string{"pricing", "haircut", "services", "cost", "price", "rates", "how-much", "fees"},
	},
	{
		pattern: "Do you take walk-ins?",
		answer:  "Yes, we accept walk-ins based on availability. However, we recommend booking an appointment to guarantee your preferred time slot.",
		tags:    []string{"appointments", "booking", "walk-ins", "reservation", "schedule", "availability"},
	},
	{
		pattern: "What services do you offer?",
		answer:  "We offer haircuts, coloring, highlights, balayage, keratin treatments, hair extensions, manicures, pedicures, facials, and waxing services.",
		tags:    []string{"services", "offerings", "treatments", "menu", "options"},
	},
	{
		pattern: "Where are you located?",
		answer:  "We are located at 847 Oak Street, Edison, NJ 07820, in a shopping plaza with ample parking near Route 27.",
		tags:    []string{"location", "address", "directions", "salon", "place", "business", "where", "find", "parking"},
	},
	{
		pattern: "Can I book an appointment online?",
		answer:  "Yes! You can book appointments through our website or by calling us at (555) 123-4567. We also accept bookings via text.",
		tags:    []string{"booking", "appointments", "online", "reservation", "schedule", "how", "website"},
	},
	{
		pattern: "What is your cancellation policy?",
		answer:  "We require 24 hours notice for cancellations. Late cancellations or no-shows may be subject to a $25 fee.",
		tags:    []string{"policy", "cancellation", "fees", "rules", "cancel", "no-show", "refund"},
	},
	{
		pattern: "Do you offer bridal services?",
		answer:  "Yes! We offer complete bridal packages including hair, makeup, and trials. Please call us to schedule a consultation.",
		tags:    []string{"bridal", "wedding", "special-events", "bride", "makeup", "packages"},
	},
	{
		pattern: "What is your phone number?",
		answer:  "You can reach us at (732) 555-0194. We are available during business hours to take your calls and answer questions.",
		tags:    []string{"contact", "phone", "call", "number", "reach", "telephone"},
	},
	{
		pattern: "What is your email address?",
		answer:  "You can email us at appointments@priyasbeautylounge.com for inquiries and appointment requests.",
		tags:    []string{"email", "contact", "correspondence", "write", "message"},
	},
	{
		pattern: "How much does makeup cost?",
		answer:  "Basic makeup starts at $50-$70. Party or event makeup ranges from $100-$150. Bridal makeup packages start at $200.",
		tags:    []string{"makeup", "pricing", "cost", "party", "event", "bridal", "price"},
	},
	{
		pattern: "What facial treatments do you offer?",
		answer:  "We offer classic facials ($65-$85), anti-aging facials ($95-$130), acne treatment facials ($80-$110), and gold facials ($150).",
		tags:    []string{"facial", "skincare", "treatments", "anti-aging", "acne", "gold", "skin"},
	},
	{
		pattern: "Do you do threading?",
		answer:  "Yes! We offer eyebrow threading for $12 and full face threading for $35.",
		tags:    []string{"threading", "eyebrows", "facial-hair", "hair-removal", "brows"},
	},
	{
		pattern: "What waxing services do you have?",
		answer:  "We offer upper lip waxing ($8), full arms ($35), and full legs ($60). Additional waxing services are available upon request.",
		tags:    []string{"waxing", "hair-removal", "legs", "arms", "upper-lip"},
	},
	{
		pattern: "Do you do manicures and nails?",
		answer:  "Yes! We offer basic manicures for $25 and nail art starting at $5-$15 per nail.",
		tags:    []string{"nails", "manicure", "nail-art", "polish", "hands"},
	},
	{
		pattern: "Do you offer henna or mehndi?",
		answer:  "Yes! We specialize in bridal henna/mehndi services ranging from $200-$400 depending on the design complexity.",
		tags:    []string{"henna", "mehndi", "bridal", "special", "indian", "design"},
	},
	{
		pattern: "Do you have WiFi or a waiting area?",
		answer:  "Yes! We have a comfortable waiting lounge with complimentary tea and coffee, plus free WiFi for all clients.",
		tags:    []string{"amenities", "wifi", "waiting", "lounge", "features", "comfort"},
	},
	{
		pattern: "Are you open on Mondays?",
		answer:  "No, we are closed on Mondays. We are open Tuesday through Sunday with varying hours.",
		tags:    []string{"monday", "closed", "hours", "schedule", "days", "day-off"},
	},
	{
		pattern: "Who are the stylists?",
		answer:  "Our team includes Priya Sharma, the owner and senior stylist with 12 years of experience, and Kavya Desai, our junior stylist and assistant.",
		tags:    []string{"staff", "stylists", "team", "who", "employees", "priya", "kavya"},
	},
	{
		pattern: "How much does hair coloring cost?",
		answer:  "Full hair coloring services range from $120 to $200 depending on hair length and color complexity.",
		tags:    []string{"coloring", "pricing", "hair", "dye", "color", "highlights", "cost"},
	},
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	ctx := context.Background()

	if err := db.Migrate(&cfg.Database, appLogger); err != nil {
		appLogger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Connect to database
	pool, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	store := repository.NewPostgresStore(pool, appLogger)
	defer store.Close()

	index, err := matching.NewRelevanceIndex()
	if err != nil {
		appLogger.Fatal("Failed to create relevance index", zap.Error(err))
	}
	defer index.Close()

	knowledgeService := service.NewKnowledgeService(store, index, &cfg.Search, appLogger)

	appLogger.Info("Seeding knowledge base", zap.Int("entries", len(seedEntries)))

	inserted, skipped := 0, 0
	for _, entry := range seedEntries {
		_, err := knowledgeService.CreateEntry(ctx, service.CreateEntryParams{
			QuestionPattern: entry.pattern,
			Answer:          entry.answer,
			Tags:            entry.tags,
		})
		switch {
		case errors.Is(err, service.ErrConflict):
			skipped++
		case err != nil:
			appLogger.Fatal("Failed to seed entry",
				zap.String("pattern", entry.pattern), zap.Error(err))
		default:
			inserted++
		}
	}

	appLogger.Info("Seeding completed",
		zap.Int("inserted", inserted),
		zap.Int("skipped", skipped),
	)
}
