package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/questguild/questbot/questbot/stats"
)

// LeaderboardImageService renders the completion leaderboard to a PNG with
// headless Chrome, for guilds that prefer an image over an embed.
type LeaderboardImageService struct {
	logger *slog.Logger
}

type leaderboardData struct {
	GuildName string
	Timestamp string
	Entries   []stats.Entry
}

func NewLeaderboardImageService() *LeaderboardImageService {
	service := &LeaderboardImageService{
		logger: slog.With(slog.String("service", "leaderboard_image")),
	}
	service.testChromedpAvailability()
	return service
}

func (s *LeaderboardImageService) testChromedpAvailability() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	chromedpCtx, cancel := chromedp.NewContext(ctx)
	defer cancel()

	if err := chromedp.Run(chromedpCtx, chromedp.Navigate("data:text/html,<html><body>test</body></html>")); err != nil {
		s.logger.Error("chromedp not available - image generation will fail",
			slog.String("error", err.Error()))
	} else {
		s.logger.Info("chromedp is available and working")
	}
}

// GenerateLeaderboardImage renders up to the first ten entries.
func (s *LeaderboardImageService) GenerateLeaderboardImage(ctx context.Context, guildName string, entries []stats.Entry) ([]byte, error) {
	start := time.Now()
	if len(entries) == 0 {
		return nil, fmt.Errorf("no leaderboard entries provided")
	}
	if len(entries) > 10 {
		entries = entries[:10]
	}

	data := leaderboardData{
		GuildName: guildName,
		Timestamp: time.Now().Format("15:04 MST"),
		Entries:   entries,
	}

	htmlContent, err := s.generateHTML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	chromedpCtx, cancel := chromedp.NewContext(ctx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancel()

	chromedpCtx, cancel = context.WithTimeout(chromedpCtx, 15*time.Second)
	defer cancel()

	var imageBytes []byte
	err = chromedp.Run(chromedpCtx,
		chromedp.Navigate("data:text/html,"+htmlContent),
		chromedp.WaitVisible("#leaderboard-container", chromedp.ByID),
		chromedp.Sleep(500*time.Millisecond),
		chromedp.Screenshot("#leaderboard-container", &imageBytes, chromedp.ByID),
	)
	if err != nil {
		s.logger.Error("Failed to generate image with chromedp",
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(start)))
		return nil, fmt.Errorf("failed to generate image: %w", err)
	}

	s.logger.Info("Leaderboard image generated",
		slog.Int("image_size", len(imageBytes)),
		slog.Duration("elapsed", time.Since(start)))
	return imageBytes, nil
}

func (s *LeaderboardImageService) generateHTML(data leaderboardData) (string, error) {
	templatePath := filepath.Join("questbot", "templates", "leaderboard.html")

	templateContent, err := os.ReadFile(templatePath)
	if err != nil {
		return "", fmt.Errorf("failed to read template file: %w", err)
	}

	tmpl, err := template.New("leaderboard").Parse(string(templateContent))
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	// data: URLs treat # as a fragment separator.
	htmlContent := strings.ReplaceAll(buf.String(), "#", "%23")
	htmlContent = strings.ReplaceAll(htmlContent, "\n", "")
	return htmlContent, nil
}
