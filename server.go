package main

import (
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"

	"github.com/Zachkp/portfolio/internal/contact"
	"github.com/Zachkp/portfolio/internal/logger"
	"github.com/Zachkp/portfolio/internal/profile"
	"github.com/Zachkp/portfolio/internal/sections"
	"github.com/Zachkp/portfolio/internal/storage"
	"github.com/Zachkp/portfolio/internal/theme"
	"github.com/Zachkp/portfolio/internal/typewriter"
)

type server struct {
	profile  *profile.Profile
	prefs    *storage.PreferenceStore
	contact  *contact.Submitter
	limiter  *rate.Limiter
	clock    clockwork.Clock
	typeOpts typewriter.Options
	log      *logger.Logger
	salt     string
}

func newRouter(s *server) (*gin.Engine, error) {
	tmpl, err := loadTemplates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.log, s.salt), visitorMiddleware(s.log))
	r.SetHTMLTemplate(tmpl)
	r.StaticFS("/static", http.FS(staticFiles()))

	// Home page route
	r.GET("/", s.handleHome)

	// Typed hero line, streamed as server-sent events
	r.GET("/typewriter", s.handleTypewriter)

	r.GET("/theme", s.handleGetTheme)
	r.POST("/theme", s.handleToggleTheme)

	// Active nav entry from the browser's section geometry
	r.POST("/nav", s.handleNav)

	// HTMX contact form endpoints
	r.GET("/contact-form", s.handleContactForm)
	r.POST("/contact", s.handleContact)

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r, nil
}

// prefersDark reads the user agent's color scheme client hint.
func prefersDark(r *http.Request) bool {
	return strings.EqualFold(strings.Trim(r.Header.Get("Sec-CH-Prefers-Color-Scheme"), `"`), "dark")
}

func (s *server) themeHolder(c *gin.Context) *theme.Holder {
	slot := s.prefs.Slot(visitorID(c), theme.Key)
	return theme.NewHolder(c.Request.Context(), slot, prefersDark(c.Request), s.log)
}

func (s *server) handleHome(c *gin.Context) {
	h := s.themeHolder(c)
	c.Header("Accept-CH", "Sec-CH-Prefers-Color-Scheme")
	c.Header("Vary", "Sec-CH-Prefers-Color-Scheme")
	c.Header("Critical-CH", "Sec-CH-Prefers-Color-Scheme")
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Profile":  s.profile,
		"Sections": sections.All(),
		"Current":  sections.Hero,
		"Theme":    h.Get(),
		"Form":     contact.Form{},
		"Year":     time.Now().Year(),
	})
}

func (s *server) handleTypewriter(c *gin.Context) {
	anim, err := typewriter.New(s.profile.Phrases, s.clock, s.typeOpts)
	if err != nil {
		s.log.Error(err, "Error creating typewriter")
		c.Status(http.StatusInternalServerError)
		return
	}
	frames := subscribeFrames(anim)
	anim.Start()
	// the stream ends with the request; the animator must not outlive it
	defer anim.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case text := <-frames:
			c.SSEvent("typed", template.HTMLEscapeString(text))
			c.Writer.Flush()
		}
	}
}

func (s *server) handleGetTheme(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"theme": s.themeHolder(c).Get()})
}

func (s *server) handleToggleTheme(c *gin.Context) {
	h := s.themeHolder(c)
	unsubscribe := h.Subscribe(func(t theme.Theme) {
		s.log.Info("Theme changed", "theme", t.String(), "visitor", hashIP(visitorID(c), s.salt))
	})
	defer unsubscribe()

	next := h.Toggle(c.Request.Context())
	c.Header("HX-Trigger", fmt.Sprintf(`{"themeChanged":%q}`, next))
	c.HTML(http.StatusOK, "theme-toggle", gin.H{"Theme": next})
}

type navRequest struct {
	Viewport sections.Viewport             `json:"viewport"`
	Sections map[sections.ID]sections.Rect `json:"sections"`
	Current  sections.ID                   `json:"current"`
}

func (s *server) handleNav(c *gin.Context) {
	var req navRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, "invalid geometry")
		return
	}

	obs := sections.NewGeometryObserver(req.Sections)
	tracker := sections.NewTracker(obs, req.Current)
	defer tracker.Close()
	obs.Scroll(req.Viewport)

	c.HTML(http.StatusOK, "nav", gin.H{
		"Sections": sections.All(),
		"Current":  tracker.Current(),
	})
}

func (s *server) handleContactForm(c *gin.Context) {
	c.HTML(http.StatusOK, "contact-form", gin.H{"Form": contact.Form{}})
}

// Fragments are always 200 so htmx swaps them in, errors included
func (s *server) handleContact(c *gin.Context) {
	var msg contact.Message
	if err := c.ShouldBind(&msg); err != nil {
		c.HTML(http.StatusOK, "contact-form", gin.H{
			"Form": contact.Form{Status: contact.StatusFailed},
		})
		return
	}

	if !s.limiter.Allow() {
		s.log.Warn("Contact form rate limited", "client", hashIP(c.ClientIP(), s.salt))
		c.HTML(http.StatusOK, "contact-form", gin.H{
			"Form": contact.Form{Values: msg, Status: contact.StatusLimited},
		})
		return
	}

	form := s.contact.Submit(c.Request.Context(), msg)
	c.HTML(http.StatusOK, "contact-form", gin.H{"Form": form})
}
