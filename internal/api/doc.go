// Package api provides the client for the MuffinLabs "history on this day" REST API.
//
// Endpoint:
//   - GET https://history.muffinlabs.com/date/{month}/{day}
//
// The response carries up to three collections (Events, Births, Deaths) of
// records with a textual year, a description and optional reference links.
// Year is ignored upstream: a day returns entries from every recorded year.
package api
