package extract

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/andybalholm/cascadia"
	"gopkg.in/yaml.v3"
)

// Rules holds the tunable parts of the extraction cascade: the ranked
// selector lists, the substantiality thresholds and the boilerplate
// denylists. The defaults were tuned against Spanish-language news sites.
type Rules struct {
	// SummarySelectors and FullSelectors are tried in order; an earlier
	// match wins only if its cleaned text clears the matching threshold.
	SummarySelectors []string `yaml:"summary_selectors"`
	FullSelectors    []string `yaml:"full_selectors"`

	// StripSelectors are removed from a matched candidate before its text
	// is measured (related articles, navigation, share widgets, comments).
	StripSelectors []string `yaml:"strip_selectors"`

	SummaryMinChars int `yaml:"summary_min_chars"`
	FullMinChars    int `yaml:"full_min_chars"`

	SummaryParagraphMinChars int `yaml:"summary_paragraph_min_chars"`
	FullParagraphMinChars    int `yaml:"full_paragraph_min_chars"`
	SummaryParagraphCap      int `yaml:"summary_paragraph_cap"`
	FullParagraphCap         int `yaml:"full_paragraph_cap"`

	// Phrase denylists applied to fallback paragraphs (lowercase substrings).
	SummaryPhraseDenylist []string `yaml:"summary_phrase_denylist"`
	FullPhraseDenylist    []string `yaml:"full_phrase_denylist"`
}

// DefaultRules returns the compiled-in rule set.
func DefaultRules() Rules {
	return Rules{
		SummarySelectors: []string{
			`div[class*="entry-content"], div[class*="post-content"], div[class*="article-content"], div[class*="main-content"], div[class*="content-area"], div[class*="post-body"]`,
			`article[class*="post"], article[class*="article"], article[class*="entry"], article[class*="hentry"]`,
			`div[class*="article-body"], div[class*="story-body"], div[class*="news-content"]`,
			`div[class*="story"], div[class*="news-story"], div[class*="article-text"], div[class*="text-content"]`,
			`section[class*="content"], section[class*="article"], section[class*="story"]`,
			`article`,
			`main`,
			`div[id*="content"], div[id*="article"], div[id*="post"], div[id*="entry"], div[id*="story"], div[id*="main"]`,
		},
		FullSelectors: []string{
			`div[class*="entry-content"], div[class*="post-content"], div[class*="article-content"], div[class*="main-content"], div[class*="content-area"], div[class*="post-body"], div[class*="article-body"]`,
			`article[class*="post"], article[class*="article"], article[class*="entry"], article[class*="hentry"]`,
			`div[class*="story-body"], div[class*="news-content"], div[class*="article-text"]`,
			`div[class*="story"], div[class*="news-story"], div[class*="article-wrapper"], div[class*="content-wrapper"]`,
			`section[class*="content"], section[class*="article"], section[class*="story"], section[class*="main"]`,
			`article`,
			`main`,
			`div[id*="content"], div[id*="article"], div[id*="post"], div[id*="entry"], div[id*="story"], div[id*="main"]`,
		},
		StripSelectors: []string{
			`script`, `style`, `nav`, `header`, `footer`, `aside`,
			`div[class*="related"], div[class*="similar"], div[class*="more-news"], div[class*="otras-noticias"], div[class*="noticias-relacionadas"]`,
			`section[class*="related"], section[class*="similar"], section[class*="more-news"], section[class*="otras-noticias"]`,
			`div[class*="preview"], div[class*="teaser"], div[class*="excerpt"], div[class*="summary"]`,
			`div[class*="share"], div[class*="social"], div[class*="compartir"]`,
			`div[class*="comment"], div[class*="comentario"]`,
			`div[class*="advertisement"], div[class*="sidebar"], div[class*="menu"], div[class*="navigation"]`,
		},
		SummaryMinChars:          200,
		FullMinChars:             300,
		SummaryParagraphMinChars: 80,
		FullParagraphMinChars:    40,
		SummaryParagraphCap:      15,
		FullParagraphCap:         25,
		SummaryPhraseDenylist: []string{
			"leer más", "ver más", "relacionad", "también te puede interesar",
			"noticias relacionadas", "más noticias", "compartir", "comentarios",
			"suscríbete", "newsletter",
		},
		FullPhraseDenylist: []string{
			"leer más", "ver más", "compartir", "comentarios", "suscríbete", "newsletter",
		},
	}
}

// LoadRules reads a YAML rules file layered over the defaults. An empty path
// returns the defaults unchanged.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()

	path = strings.TrimSpace(path)
	if path == "" {
		return rules, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("read rules file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &rules); err != nil {
		return Rules{}, fmt.Errorf("decode rules file: %w", err)
	}

	if err := rules.Validate(); err != nil {
		return Rules{}, fmt.Errorf("rules file %s: %w", path, err)
	}
	return rules, nil
}

// Validate checks thresholds and compiles every selector so a bad rules file
// fails at startup instead of panicking inside goquery at request time.
func (r Rules) Validate() error {
	if len(r.SummarySelectors) == 0 || len(r.FullSelectors) == 0 {
		return errors.New("selector lists must not be empty")
	}
	if r.SummaryMinChars <= 0 || r.FullMinChars <= 0 {
		return errors.New("content thresholds must be positive")
	}
	if r.SummaryParagraphMinChars <= 0 || r.FullParagraphMinChars <= 0 {
		return errors.New("paragraph thresholds must be positive")
	}
	if r.SummaryParagraphCap <= 0 || r.FullParagraphCap <= 0 {
		return errors.New("paragraph caps must be positive")
	}

	groups := [][]string{r.SummarySelectors, r.FullSelectors, r.StripSelectors}
	for _, group := range groups {
		for _, sel := range group {
			if _, err := cascadia.ParseGroup(sel); err != nil {
				return fmt.Errorf("invalid selector %q: %w", sel, err)
			}
		}
	}
	return nil
}
