package config

import "time"

// UI and display constants
const (
	QuestsPerPage      = 5
	LeaderboardPerPage = 10

	ErrorColor   = 0xFF0000
	SuccessColor = 0x00FF00
	InfoColor    = 0x0099FF
	WarningColor = 0xFFAA00

	EmbedDefaultColor = 0x2B2D31
)

// Timeouts
const (
	CommandExecutionTimeout = 10 * time.Second
	StoreQueryTimeout       = 5 * time.Second
	ReviewTimeout           = 15 * time.Second
	ImageRenderTimeout      = 30 * time.Second
	UploadTimeout           = 30 * time.Second
	NetworkDialTimeout      = 5 * time.Second
)

// Quest limits
const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 2000
	MaxProofTextLength   = 2000
	MaxProofImages       = 5
	MaxSearchResults     = 25
)
