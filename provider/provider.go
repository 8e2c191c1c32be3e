// Package provider implements suggestion backends for pending
// secondary-locale entries.
package provider

import "github.com/ZaguanLabs/i18nmig"

// AIProvider is an alias to the main package interface for convenience.
type AIProvider = i18nmig.AIProvider

// SuggestRequest is an alias to the main package type.
type SuggestRequest = i18nmig.SuggestRequest
