// Package contact finds a contact email for an event website.
//
// The landing page is scanned first. When it carries no address, the first
// contact-like link on the page is followed once and scanned the same way.
package contact
