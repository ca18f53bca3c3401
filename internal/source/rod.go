package source

import (
	"context"
	"strings"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// BrowserConfig configures the Chrome instance behind RodLauncher.
type BrowserConfig struct {
	// RemoteURL is the DevTools WebSocket URL of an external Chrome. Empty
	// launches a local headless Chrome on first use.
	RemoteURL string
	Headless  bool
	Stealth   bool
}

// RodLauncher opens pages on a shared Chrome process. The browser connects
// lazily; each Session is its own page (tab) and is independent of others.
type RodLauncher struct {
	cfg BrowserConfig

	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
	closed  bool
}

// NewRodLauncher returns a launcher that connects on first NewSession.
func NewRodLauncher(cfg BrowserConfig) *RodLauncher {
	return &RodLauncher{cfg: cfg}
}

func (l *RodLauncher) connect() (*rod.Browser, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil, eris.New("browser: launcher is closed")
	}
	if l.browser != nil {
		return l.browser, nil
	}

	wsURL := l.cfg.RemoteURL
	if wsURL == "" {
		lc := launcher.New().
			Headless(l.cfg.Headless).
			Set("disable-blink-features", "AutomationControlled")
		u, err := lc.Launch()
		if err != nil {
			return nil, eris.Wrap(err, "browser: launch")
		}
		wsURL = u
		l.lnch = lc
		zap.L().Info("browser: launched local chrome", zap.Bool("headless", l.cfg.Headless))
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		return nil, eris.Wrap(err, "browser: connect")
	}
	l.browser = b
	return b, nil
}

// NewSession opens a fresh page.
func (l *RodLauncher) NewSession(ctx context.Context) (Session, error) {
	b, err := l.connect()
	if err != nil {
		return nil, err
	}

	var page *rod.Page
	if l.cfg.Stealth {
		page, err = stealth.Page(b)
	} else {
		page, err = b.Page(proto.TargetCreateTarget{URL: ""})
	}
	if err != nil {
		return nil, eris.Wrap(err, "browser: create page")
	}
	return &rodSession{page: page}, nil
}

// Close shuts the browser down. Sessions still open become unusable.
func (l *RodLauncher) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true

	var err error
	if l.browser != nil {
		err = l.browser.Close()
		l.browser = nil
	}
	if l.lnch != nil {
		l.lnch.Kill()
		l.lnch = nil
	}
	return eris.Wrap(err, "browser: close")
}

type rodSession struct {
	page *rod.Page
}

func (s *rodSession) Navigate(ctx context.Context, url string) error {
	p := s.page.Context(ctx)
	if err := p.Navigate(url); err != nil {
		return eris.Wrapf(err, "browser: navigate %s", url)
	}
	if err := p.WaitLoad(); err != nil {
		return eris.Wrapf(err, "browser: wait load %s", url)
	}
	return nil
}

func (s *rodSession) Fill(ctx context.Context, selector, value string) error {
	el, err := s.page.Context(ctx).Element(selector)
	if err != nil {
		return eris.Wrapf(err, "browser: find %s", selector)
	}
	if err := el.SelectAllText(); err != nil {
		return eris.Wrapf(err, "browser: select %s", selector)
	}
	return eris.Wrapf(el.Input(value), "browser: input %s", selector)
}

func (s *rodSession) Click(ctx context.Context, selector string) error {
	el, err := s.page.Context(ctx).Element(selector)
	if err != nil {
		return eris.Wrapf(err, "browser: find %s", selector)
	}
	return eris.Wrapf(el.Click(proto.InputMouseButtonLeft, 1), "browser: click %s", selector)
}

func (s *rodSession) WaitFor(ctx context.Context, selector string) error {
	_, err := s.page.Context(ctx).Element(selector)
	return eris.Wrapf(err, "browser: wait for %s", selector)
}

func (s *rodSession) Rows(ctx context.Context, rowSelector string) ([][]string, error) {
	rows, err := s.page.Context(ctx).Elements(rowSelector)
	if err != nil {
		return nil, eris.Wrapf(err, "browser: rows %s", rowSelector)
	}
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells, err := row.Elements("td")
		if err != nil {
			return nil, eris.Wrap(err, "browser: row cells")
		}
		texts := make([]string, 0, len(cells))
		for _, c := range cells {
			t, err := c.Text()
			if err != nil {
				return nil, eris.Wrap(err, "browser: cell text")
			}
			texts = append(texts, strings.TrimSpace(t))
		}
		out = append(out, texts)
	}
	return out, nil
}

func (s *rodSession) Text(ctx context.Context, selector string) (string, error) {
	has, el, err := s.page.Context(ctx).Has(selector)
	if err != nil {
		return "", eris.Wrapf(err, "browser: has %s", selector)
	}
	if !has {
		return "", nil
	}
	t, err := el.Text()
	if err != nil {
		return "", eris.Wrapf(err, "browser: text %s", selector)
	}
	return strings.TrimSpace(t), nil
}

func (s *rodSession) Close() error {
	return s.page.Close()
}
