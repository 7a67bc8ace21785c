package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Selectors are the CSS selectors used to read Goodreads pages.
type Selectors struct {
	Email        string `yaml:"email"`
	Password     string `yaml:"password"`
	SignIn       string `yaml:"sign_in"`
	NextPage     string `yaml:"next_page"`
	UserLink     string `yaml:"user_link"`
	ShelfBody    string `yaml:"shelf_body"`
	ShelfTitle   string `yaml:"shelf_title"`
	ShelfAuthor  string `yaml:"shelf_author"`
	ShelfRating  string `yaml:"shelf_rating"`
	AvgRating    string `yaml:"average_rating"`
	RatingCount  string `yaml:"rating_count"`
	ReviewCount  string `yaml:"review_count"`
	PageCount    string `yaml:"page_count"`
	OrigTitle    string `yaml:"original_title"`
	GenreLink    string `yaml:"genre_link"`
	GenreExclude string `yaml:"genre_exclude"`
}

// Config holds scraper configuration.
type Config struct {
	SignInURL   string        `yaml:"sign_in_url"`
	FriendsURL  string        `yaml:"friends_url"`
	ShelfURL    string        `yaml:"shelf_url"` // {id} and {shelf} are substituted
	Shelf       string        `yaml:"shelf"`
	Email       string        `yaml:"email"`
	Password    string        `yaml:"-"`
	OutputDir   string        `yaml:"output_dir"`
	Format      string        `yaml:"format"` // csv, json, parquet or dual
	ReportFile  string        `yaml:"report_file"`
	Wait        time.Duration `yaml:"wait"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxPages    int           `yaml:"max_pages"`
	CacheSize   int           `yaml:"cache_details"`
	Headless    bool          `yaml:"headless"`
	ProxyURL    string        `yaml:"proxy"`
	ChromeBin   string        `yaml:"chrome"`
	MetricsAddr string        `yaml:"metrics_addr"`
	Verbose     bool          `yaml:"verbose"`
	Selectors   Selectors     `yaml:"selectors"`
}

// DefaultSelectors match the Goodreads markup the scraper was written against.
func DefaultSelectors() Selectors {
	return Selectors{
		Email:        "#user_email",
		Password:     "#user_password",
		SignIn:       `[name="next"]`,
		NextPage:     `a[rel="next"]`,
		UserLink:     ".userLink",
		ShelfBody:    "#booksBody",
		ShelfTitle:   `tr[id*="review"] > td:nth-of-type(4) > div > a`,
		ShelfAuthor:  `tr[id*="review"] > td:nth-of-type(5) > div > a`,
		ShelfRating:  `tr[id*="review"] > td:nth-of-type(14) > div > span`,
		AvgRating:    `#bookMeta > span[itemprop="ratingValue"]`,
		RatingCount:  `#bookMeta > a:nth-of-type(2) > meta[itemprop="ratingCount"]`,
		ReviewCount:  `#bookMeta > a:nth-of-type(3) > meta[itemprop="reviewCount"]`,
		PageCount:    `#details > div:nth-of-type(1) > span[itemprop="numberOfPages"]`,
		OrigTitle:    "#bookDataBox > div:nth-of-type(1) > div.infoBoxRowItem",
		GenreLink:    ".actionLinkLite.bookPageGenreLink",
		GenreExclude: "users",
	}
}

// DefaultConfig returns defaults for goodreads.com.
func DefaultConfig() *Config {
	return &Config{
		SignInURL:  "https://www.goodreads.com/user/sign_in",
		FriendsURL: "https://www.goodreads.com/friend",
		ShelfURL:   "https://www.goodreads.com/review/list/{id}?shelf={shelf}",
		Shelf:      "read",
		OutputDir:  "data",
		Format:     "csv",
		Wait:       3 * time.Second,
		Timeout:    30 * time.Second,
		MaxPages:   -1,
		Headless:   true,
		Selectors:  DefaultSelectors(),
	}
}

// Load overlays the YAML file at path onto cfg. Fields absent from the file
// keep their current values.
func Load(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// ShelfLink returns the shelf URL for one user.
func (c *Config) ShelfLink(userID string) string {
	r := strings.NewReplacer("{id}", userID, "{shelf}", url.QueryEscape(c.Shelf))
	return r.Replace(c.ShelfURL)
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if err := validateURL("sign-in URL", c.SignInURL); err != nil {
		return err
	}
	if err := validateURL("friends URL", c.FriendsURL); err != nil {
		return err
	}
	if err := validateURL("shelf URL", c.ShelfURL); err != nil {
		return err
	}
	if !strings.Contains(c.ShelfURL, "{id}") {
		return fmt.Errorf("shelf URL must contain {id}")
	}
	if c.Shelf == "" {
		return fmt.Errorf("shelf cannot be empty")
	}
	if c.Email == "" || c.Password == "" {
		return fmt.Errorf("email and password are required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output directory cannot be empty")
	}
	switch c.Format {
	case "csv", "json", "parquet", "dual":
	default:
		return fmt.Errorf("output format must be csv, json, parquet, or dual")
	}
	if c.Wait < 0 {
		return fmt.Errorf("wait cannot be negative")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxPages == 0 || c.MaxPages < -1 {
		return fmt.Errorf("max pages must be positive or -1")
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache size cannot be negative")
	}
	if c.Selectors.NextPage == "" || c.Selectors.UserLink == "" || c.Selectors.ShelfBody == "" {
		return fmt.Errorf("selectors cannot be empty")
	}
	return nil
}

func validateURL(name, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s cannot be empty", name)
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s must include a host", name)
	}
	return nil
}
