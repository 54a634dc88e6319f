package settings

import "github.com/thomas-vilte/prbuddy/internal/models"

const (
	DefaultTemplateID = "default"
	DefaultModelID    = "mimo-v2-flash"
)

// DefaultTemplates are used whenever no templates are stored.
func DefaultTemplates() []models.PRTemplate {
	return []models.PRTemplate{
		{
			ID:    DefaultTemplateID,
			Title: "Default",
			Structure: `## Describe your changes

## Clickup link

## PR Type

- [ ] Backend
- [ ] Frontend

## Checklist before requesting a review

- [x] I have self-reviewed my code.
- [x] All my code is following Codebuddy Coding Standards and Guidelines.
- [x] I have tested my code.
- [x] My PR title is meaningful and max 60 characters.
- [x] I have made sure only the changes in context of the feature are in this PR.
- [x] I have made sure I am not including any env secrets in this PR.
- [x] I have made sure the PR does not have conflict`,
		},
		{
			ID:    "bug",
			Title: "Bug Fix Report",
			Structure: `## Bug Description
What was the bug?

## Root Cause
Why did this bug occur?

## Solution
How was it fixed?

## Testing
How the fix was verified.`,
		},
		{
			ID:    "feature",
			Title: "Feature Implementation",
			Structure: `## Feature Overview
What does this feature do?

## Implementation
How was it implemented?

## Usage
How to use this feature.

## Testing
How this was tested.`,
		},
		{
			ID:    "refactor",
			Title: "Code Refactor",
			Structure: `## Refactor Overview
What was refactored and why?

## Changes
Key architectural or structural changes.

## Benefits
What improvements does this bring?

## Testing
How this was verified to not break existing functionality.`,
		},
		{
			ID:    "hotfix",
			Title: "Hotfix",
			Structure: `## Issue
What critical issue is being fixed?

## Fix
What was done to fix it?

## Impact
What systems/users are affected?

## Testing
Verification steps.`,
		},
	}
}

// DefaultModels are used whenever no models are stored.
func DefaultModels() []models.AIModel {
	return []models.AIModel{
		{
			ID:       DefaultModelID,
			Name:     "Xiaomi MiMo v2 Flash (Free)",
			ModelID:  "xiaomi/mimo-v2-flash:free",
			Provider: models.ProviderOpenRouter,
			IsActive: true,
		},
	}
}

// DefaultPreferences are the generator choices before the user saves any.
func DefaultPreferences() models.Preferences {
	return models.Preferences{
		TemplateID: DefaultTemplateID,
		Tone:       models.ToneProfessional,
	}
}
