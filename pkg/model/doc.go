// Package model defines the loan domain payloads exchanged with the API and
// the typed form model consumed by renderers. Form types live in
// internal/model and are re-exported here so the HTML and terminal renderers
// share one description of the borrower and loan forms. Borrower records are
// created by the backend; the credit score is read-only on this side.
package model
