package harvest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/tradeshow-events/internal/browser"
	"github.com/pfrederiksen/tradeshow-events/internal/company"
	"github.com/pfrederiksen/tradeshow-events/internal/contact"
	"github.com/pfrederiksen/tradeshow-events/internal/event"
	"github.com/pfrederiksen/tradeshow-events/internal/filter"
	"github.com/pfrederiksen/tradeshow-events/internal/logger"
	"github.com/pfrederiksen/tradeshow-events/internal/metrics"
	"github.com/pfrederiksen/tradeshow-events/internal/session"
)

// Config controls one harvest run
type Config struct {
	URL           string
	Months        []event.MonthSpec
	Selectors     browser.Selectors
	Settle        time.Duration
	ContactDelay  time.Duration
	SelectTimeout time.Duration
}

// CompanyResolver finds the organizing company of a listing
type CompanyResolver interface {
	Resolve(ctx context.Context, q company.Query, sess *session.Session) company.Result
}

// ContactResolver finds a contact email on an event website
type ContactResolver interface {
	Resolve(ctx context.Context, websiteURL, eventName string) contact.Info
}

// SnapshotSaver keeps the page source for diagnosing a fatal error
type SnapshotSaver interface {
	SaveSnapshot(name, html string) (string, error)
}

// Result is what a run produced. Records are in row order.
type Result struct {
	Records      []*event.Record
	Summary      Summary
	Aborted      bool
	SnapshotPath string
}

// Controller walks the listing and enriches qualifying rows
type Controller struct {
	cfg       Config
	driver    browser.Driver
	companies CompanyResolver
	contacts  ContactResolver
	snapshots SnapshotSaver
	metrics   *metrics.Recorder
	progress  chan<- Progress
	sleep     Sleeper
}

// Option configures a Controller
type Option func(*Controller)

// WithSnapshots saves the page source when a run aborts
func WithSnapshots(s SnapshotSaver) Option {
	return func(c *Controller) { c.snapshots = s }
}

// WithMetrics records run counters on r
func WithMetrics(r *metrics.Recorder) Option {
	return func(c *Controller) { c.metrics = r }
}

// WithProgress sends progress updates on ch. Sends never block; updates are
// dropped when ch is full.
func WithProgress(ch chan<- Progress) Option {
	return func(c *Controller) { c.progress = ch }
}

// WithSleeper replaces the wait used for settle and politeness delays
func WithSleeper(s Sleeper) Option {
	return func(c *Controller) { c.sleep = s }
}

// New creates a controller
func New(cfg Config, driver browser.Driver, companies CompanyResolver, contacts ContactResolver, opts ...Option) *Controller {
	cfg.Selectors = cfg.Selectors.WithDefaults()
	if cfg.SelectTimeout <= 0 {
		cfg.SelectTimeout = 30 * time.Second
	}

	c := &Controller{
		cfg:       cfg,
		driver:    driver,
		companies: companies,
		contacts:  contacts,
		sleep:     Sleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// run holds the state of a single Run call
type run struct {
	sess    *session.Session
	records []*event.Record
	summary Summary
}

// Run harvests every configured month in order.
//
// It returns ErrCancelled when ctx or sess is cancelled and a *FatalError when
// the month control or search button cannot be driven. In both cases the
// records gathered so far are returned alongside the error.
func (c *Controller) Run(ctx context.Context, sess *session.Session) (*Result, error) {
	r := &run{
		sess: sess,
		summary: Summary{
			SessionID: sess.ID,
			StartedAt: time.Now(),
		},
	}

	logger.Info("Harvest started", logger.Fields{
		"session_id": sess.ID,
		"url":        c.cfg.URL,
		"months":     len(c.cfg.Months),
		"cap":        sess.Cap(),
	})

	err := c.runMonths(ctx, r)
	res := c.finish(r, err)

	switch {
	case err == nil:
		logger.Info("Harvest finished", summaryFields(res.Summary))
	case errors.Is(err, ErrCancelled):
		logger.Warn("Harvest cancelled", summaryFields(res.Summary), nil)
	default:
		logger.Error("Harvest aborted", summaryFields(res.Summary), err)
	}
	return res, err
}

func (c *Controller) runMonths(ctx context.Context, r *run) error {
	for _, month := range c.cfg.Months {
		if stopped(ctx, r.sess) {
			return ErrCancelled
		}
		if r.sess.CapReached() {
			r.summary.CapReached = true
			logger.Info("Event cap reached", logger.Fields{"cap": r.sess.Cap()})
			return nil
		}

		if err := c.harvestMonth(ctx, r, month); err != nil {
			return err
		}
		r.summary.MonthsProcessed++
	}

	if r.sess.CapReached() {
		r.summary.CapReached = true
	}
	return nil
}

func (c *Controller) harvestMonth(ctx context.Context, r *run, month event.MonthSpec) error {
	label := month.String()
	q := filter.ForMonth(month)
	c.emit(r, Progress{Kind: ProgressMonthStarted, Month: label, Message: "Processing " + label})
	logger.Info("Processing month", logger.Fields{"month": label, "criteria": q.String()})

	if err := c.driver.Navigate(ctx, c.cfg.URL); err != nil {
		if stopped(ctx, r.sess) {
			return ErrCancelled
		}
		logger.Warn("Failed to load listing", logger.Fields{"month": label, "url": c.cfg.URL}, err)
	}
	if err := c.sleep(ctx, r.sess, c.cfg.Settle); err != nil {
		return err
	}

	if err := c.selectMonth(ctx, month); err != nil {
		if stopped(ctx, r.sess) {
			return ErrCancelled
		}
		return c.fatal(ctx, StageSelectMonth, month, strings.ToLower(month.Name), err)
	}

	if err := c.driver.Click(ctx, c.cfg.Selectors.Submit); err != nil {
		if stopped(ctx, r.sess) {
			return ErrCancelled
		}
		return c.fatal(ctx, StageSubmitSearch, month, "search_"+strings.ToLower(month.Name), err)
	}
	if err := c.sleep(ctx, r.sess, c.cfg.Settle); err != nil {
		return err
	}

	found := 0
	defer func() {
		logger.Info("Month complete", logger.Fields{"month": label, "found": found})
		c.emit(r, Progress{
			Kind:    ProgressMonthDone,
			Month:   label,
			Message: fmt.Sprintf("Found %d events for %s", found, label),
		})
	}()

	for page := 1; ; page++ {
		if stopped(ctx, r.sess) {
			return ErrCancelled
		}

		rows, err := c.driver.Rows(ctx, c.cfg.Selectors.Row)
		if err != nil {
			if stopped(ctx, r.sess) {
				return ErrCancelled
			}
			logger.Warn("Failed to read rows", logger.Fields{"month": label, "page": page}, err)
			c.metrics.FetchError("rows")
			return nil
		}

		r.summary.PagesVisited++
		c.metrics.PageVisited(month.Name)
		logger.IncrCounter("harvest.pages")
		c.emit(r, Progress{
			Kind:    ProgressPage,
			Month:   label,
			Page:    page,
			Message: fmt.Sprintf("Processing page %d of %s (%d rows)", page, label, len(rows)),
		})

		if len(rows) == 0 {
			return nil
		}

		n, err := c.scanRows(ctx, r, month, q, rows)
		found += n
		if err != nil {
			return err
		}
		if r.sess.CapReached() {
			return nil
		}

		more, err := c.nextPage(ctx, r, label)
		if err != nil || !more {
			return err
		}
	}
}

func (c *Controller) selectMonth(ctx context.Context, month event.MonthSpec) error {
	if err := c.driver.WaitVisible(ctx, c.cfg.Selectors.Month, c.cfg.SelectTimeout); err != nil {
		return fmt.Errorf("waiting for month control: %w", err)
	}
	if err := c.driver.SelectByValue(ctx, c.cfg.Selectors.Month, month.Value); err != nil {
		return fmt.Errorf("selecting month value %q: %w", month.Value, err)
	}
	return nil
}

// scanRows enriches the qualifying rows of one page and returns how many were
// appended
func (c *Controller) scanRows(ctx context.Context, r *run, month event.MonthSpec, q *filter.Qualifier, rows []browser.Row) (int, error) {
	appended := 0
	for i, row := range rows {
		if stopped(ctx, r.sess) {
			return appended, ErrCancelled
		}
		r.summary.RowsSeen++

		listing, ok := ListingFromRow(row)
		if !ok {
			r.summary.RowsSkipped++
			c.metrics.RowSkipped("malformed")
			logger.Debug("Skipping malformed row", logger.Fields{"month": month.String(), "row": i, "cells": len(row.Cells)})
			continue
		}
		if !q.Matches(listing) {
			r.summary.RowsSkipped++
			c.metrics.RowSkipped("not-qualified")
			continue
		}
		if !r.sess.Reserve() {
			return appended, nil
		}

		rec, err := c.enrich(ctx, r.sess, month, listing, row)
		if err != nil {
			r.sess.Release()
			logger.Info("Dropped in-flight event", logger.Fields{"event": listing.Name})
			return appended, err
		}

		r.records = append(r.records, rec)
		appended++
		c.metrics.RecordAppended(string(rec.CompanySource))
		logger.IncrCounter("harvest.records")
		c.emit(r, Progress{
			Kind:    ProgressRecord,
			Month:   month.String(),
			Message: "Processed: " + listing.Name,
		})

		if r.sess.CapReached() {
			logger.Info("Event cap reached", logger.Fields{"cap": r.sess.Cap()})
			return appended, nil
		}
	}
	return appended, nil
}

func (c *Controller) enrich(ctx context.Context, sess *session.Session, month event.MonthSpec, l event.Listing, row browser.Row) (*event.Record, error) {
	website := WebsiteURL(row)

	start := time.Now()
	co := c.companies.Resolve(ctx, company.Query{
		EventName:  l.Name,
		Summary:    l.Summary(),
		WebsiteURL: website,
	}, sess)
	c.metrics.ObserveResolve("company", time.Since(start))
	if stopped(ctx, sess) {
		return nil, ErrCancelled
	}

	var info contact.Info
	if website != "" {
		if err := c.sleep(ctx, sess, c.cfg.ContactDelay); err != nil {
			return nil, err
		}

		start = time.Now()
		info = c.contacts.Resolve(ctx, website, l.Name)
		c.metrics.ObserveResolve("contact", time.Since(start))
		if stopped(ctx, sess) {
			return nil, ErrCancelled
		}
	}

	return event.NewRecord(l, month.String(), info.Website, info.Email, co.Name, co.Source), nil
}

// nextPage advances to the following result page. It returns false when there
// is no next control.
func (c *Controller) nextPage(ctx context.Context, r *run, label string) (bool, error) {
	sel := c.cfg.Selectors
	err := c.driver.Click(ctx, sel.Next)
	if errors.Is(err, browser.ErrNotFound) {
		logger.Debug("No next page", logger.Fields{"month": label})
		return false, nil
	}
	if err != nil {
		if stopped(ctx, r.sess) {
			return false, ErrCancelled
		}
		if nerr := c.driver.ClickNested(ctx, sel.Next, sel.NextInner); nerr != nil {
			if stopped(ctx, r.sess) {
				return false, ErrCancelled
			}
			logger.Warn("Failed to advance page", logger.Fields{"month": label}, nerr)
			return false, nil
		}
	}

	if err := c.sleep(ctx, r.sess, c.cfg.Settle); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Controller) fatal(ctx context.Context, stage Stage, month event.MonthSpec, snapshot string, err error) error {
	ferr := &FatalError{Stage: stage, Month: month.String(), Err: err}
	if c.snapshots == nil {
		return ferr
	}

	html, serr := c.driver.PageSource(ctx)
	if serr != nil {
		logger.Warn("Failed to capture page source", logger.Fields{"stage": string(stage)}, serr)
		return ferr
	}
	path, serr := c.snapshots.SaveSnapshot(snapshot, html)
	if serr != nil {
		logger.Warn("Failed to save snapshot", logger.Fields{"stage": string(stage)}, serr)
		return ferr
	}
	ferr.Snapshot = path
	logger.Info("Saved page snapshot", logger.Fields{"path": path})
	return ferr
}

func (c *Controller) finish(r *run, err error) *Result {
	r.summary.Tally(r.records)
	r.summary.TokensUsed = r.sess.TokensUsed()
	r.summary.Duration = time.Since(r.summary.StartedAt)
	r.summary.CapReached = r.summary.CapReached || r.sess.CapReached()
	c.metrics.AddTokens(r.summary.TokensUsed)

	res := &Result{Records: r.records}

	var ferr *FatalError
	switch {
	case errors.Is(err, ErrCancelled):
		r.summary.Cancelled = true
	case errors.As(err, &ferr):
		r.summary.Aborted = true
		res.Aborted = true
		res.SnapshotPath = ferr.Snapshot
	}

	res.Summary = r.summary
	logger.SetGauge("harvest.tokens_used", float64(r.summary.TokensUsed))
	logger.RecordTiming("harvest.run", r.summary.Duration)
	return res
}

func (c *Controller) emit(r *run, p Progress) {
	if c.progress == nil {
		return
	}
	p.Collected = len(r.records)
	p.Cap = r.sess.Cap()
	select {
	case c.progress <- p:
	default:
	}
}

func summaryFields(s Summary) logger.Fields {
	return logger.Fields{
		"session_id":    s.SessionID,
		"total":         s.Total,
		"with_website":  s.WithWebsite,
		"with_email":    s.WithEmail,
		"with_company":  s.WithCompany,
		"from_ai":       s.FromAI,
		"from_website":  s.FromWebsite,
		"tokens_used":   s.TokensUsed,
		"pages_visited": s.PagesVisited,
		"duration_ms":   s.Duration.Milliseconds(),
	}
}
