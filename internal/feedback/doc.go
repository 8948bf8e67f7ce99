// Package feedback closes the self-learning loop.
//
// After an operator uploads a generated campaign, Google Ads Editor
// exports a result CSV with a verdict per row. This package parses
// those files, classifies the rejections by element type, and turns
// them into submissions for the control sheet: rejected keywords feed
// the banned list directly, creative text goes to moderation.
package feedback
