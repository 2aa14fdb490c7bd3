package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/VitaliyFgiol/Bot/internal/content"
	"github.com/VitaliyFgiol/Bot/internal/handlers"
	"github.com/VitaliyFgiol/Bot/internal/services"
	"github.com/VitaliyFgiol/Bot/internal/sheets"
	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	_ "github.com/joho/godotenv/autoload"
	_ "modernc.org/sqlite"
)

var defaultTopics = []string{
	"Тема 1", "Тема 2", "Тема 3", "Тема 4",
	"Тема 5", "Тема 6", "Тема 7", "Тема 8",
}

func main() {
	botToken := os.Getenv("BOT_TOKEN")
	if botToken == "" {
		log.Fatal("BOT_TOKEN environment variable is required")
	}

	var adminID int64
	if adminIDStr := os.Getenv("ADMIN_ID"); adminIDStr != "" {
		var err error
		adminID, err = strconv.ParseInt(adminIDStr, 10, 64)
		if err != nil {
			log.Fatalf("Invalid ADMIN_ID: %v", err)
		}
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "study.db"
	}

	contentSpreadsheetID := os.Getenv("CONTENT_SPREADSHEET_ID")
	if contentSpreadsheetID == "" {
		contentSpreadsheetID = "content"
	}
	testSpreadsheetID := os.Getenv("TEST_SPREADSHEET_ID")
	if testSpreadsheetID == "" {
		testSpreadsheetID = "tests"
	}

	enforceEligibility := true
	if v := os.Getenv("ENFORCE_ELIGIBILITY"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			log.Fatalf("Invalid ENFORCE_ELIGIBILITY: %v", err)
		}
		enforceEligibility = parsed
	}

	reminderInterval := 24 * time.Hour
	if v := os.Getenv("REMINDER_INTERVAL"); v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			log.Fatalf("Invalid REMINDER_INTERVAL: %v", err)
		}
		reminderInterval = parsed
	}

	sqlDB, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer sqlDB.Close()

	store, err := sheets.NewSQLiteStore(sqlDB)
	if err != nil {
		log.Fatalf("Failed to initialize sheet store: %v", err)
	}
	defer store.Close()

	guidelineRepo := content.NewGuidelineRepository(store, contentSpreadsheetID)
	quizRepo := content.NewQuizRepository(store, testSpreadsheetID)
	resultRepo := content.NewResultRepository(store, testSpreadsheetID)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}

	b, err := bot.New(botToken, bot.WithHTTPClient(15*time.Second, httpClient))
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	// Retry getMe with shorter timeout
	var botInfo *tgmodels.User
	for i := 0; i < 3; i++ {
		log.Printf("Attempting to connect to Telegram API (attempt %d/3)...", i+1)
		getMeCtx, getMeCancel := context.WithTimeout(context.Background(), 10*time.Second)
		botInfo, err = b.GetMe(getMeCtx)
		getMeCancel()
		if err == nil {
			log.Printf("Successfully connected to Telegram API")
			break
		}
		log.Printf("Failed to get bot info (attempt %d/3): %v", i+1, err)
		if i < 2 {
			log.Printf("Retrying in 2 seconds...")
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		log.Fatalf("Failed to get bot info after 3 attempts: %v", err)
	}

	transport := services.NewBotTransport(b)
	sessions := services.NewSessionStore()
	errorManager := services.NewErrorManager(b, adminID)
	generator := services.NewQuizGenerator()
	menus := services.NewMenuManager(transport, sessions, guidelineRepo, quizRepo, resultRepo, generator, defaultTopics, enforceEligibility)
	reminders := services.NewReminderService(transport, resultRepo, defaultTopics, reminderInterval)

	handler := handlers.NewBotHandler(b, errorManager, menus)

	b.RegisterHandlerMatchFunc(func(update *tgmodels.Update) bool {
		return true
	}, handler.HandleUpdate, logMiddleware)

	go reminders.Run(ctx)

	log.Printf("Bot @%s started. DB: %s", botInfo.Username, dbPath)

	b.Start(ctx)
}

func formatUser(u tgmodels.User) string {
	name := u.FirstName
	if u.LastName != "" {
		name += " " + u.LastName
	}
	if u.Username != "" {
		name += " @" + u.Username
	}
	return fmt.Sprintf("%s [%d]", name, u.ID)
}

func logMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *tgmodels.Update) {
		if update.Message != nil && update.Message.From != nil {
			log.Printf("[MSG] from=%s text=%q", formatUser(*update.Message.From), update.Message.Text)
		}
		if update.CallbackQuery != nil {
			log.Printf("[CALLBACK] from=%s data=%q", formatUser(update.CallbackQuery.From), update.CallbackQuery.Data)
		}
		next(ctx, b, update)
	}
}
