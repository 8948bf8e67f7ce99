// Package campaign generates Google Ads search campaigns.
//
// For each site the flow is: check the domain against the banned
// list, ask Gemini for keywords and creative text, validate and
// filter the output, top up thin results with stock content, and
// write a Google Ads Editor import CSV. Keywords stripped by the
// banned list are collected for the moderation queue.
package campaign
