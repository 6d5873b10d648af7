// Package marketplace wraps the Amazon Mechanical Turk requester API.
//
// Client exposes the handful of calls the survey workflow makes: account
// balance, HIT creation, HIT and qualification listings, and submitted
// assignment retrieval with answer parsing. Cost and PreviewURL are pure
// helpers used for the confirmation summary and publish output.
package marketplace
