package fetch

import (
	"net/url"
	"strings"
)

// Platform is a known applicant tracking system.
type Platform string

const (
	PlatformGreenhouse Platform = "greenhouse"
	PlatformLever      Platform = "lever"
	PlatformWorkday    Platform = "workday"
	PlatformUnknown    Platform = "unknown"
)

type platformRule struct {
	hosts   []string
	content []string
	noise   []string
}

var platformRules = map[Platform]platformRule{
	PlatformGreenhouse: {
		hosts:   []string{"greenhouse.io"},
		content: []string{".job__description.body", ".job__description", ".job-description__content", "#content", ".job-post-container"},
		noise:   []string{".application--wrapper", ".voluntary-self-id", "#usa_self_id_section", ".post-apply"},
	},
	PlatformLever: {
		hosts:   []string{"lever.co"},
		content: []string{".posting-page", ".section-wrapper.page-full-width", ".posting-description", ".content"},
		noise:   []string{".apply-section", ".lever-application-form", ".posting-apply"},
	},
	PlatformWorkday: {
		hosts:   []string{"myworkdayjobs.com", "workday.com"},
		content: []string{"[data-automation-id='jobDescription']", ".job-description"},
		noise:   []string{"[data-automation-id='applyButton']", ".application-section"},
	},
}

// applicationNoise is form and legal boilerplate found on every job board.
var applicationNoise = []string{
	"form",
	"#application-form",
	".application-form",
	".apply-button-container",
	".eeo-statement",
	".eeo-section",
	".legal-disclosure",
	".social-share",
	".cookie-consent",
}

// DetectPlatform identifies the job board that hosts rawURL.
func DetectPlatform(rawURL string) Platform {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return PlatformUnknown
	}
	host := strings.ToLower(parsed.Hostname())
	for platform, rule := range platformRules {
		for _, h := range rule.hosts {
			if host == h || strings.HasSuffix(host, "."+h) {
				return platform
			}
		}
	}
	return PlatformUnknown
}

// ContentSelectors returns the content selectors for platform, most specific first.
func ContentSelectors(platform Platform) []string {
	rule, ok := platformRules[platform]
	if !ok {
		return JobPostingSelectors()
	}
	return append(append([]string{}, rule.content...), JobPostingSelectors()...)
}

// NoiseSelectors returns the selectors removed before extracting from platform.
func NoiseSelectors(platform Platform) []string {
	out := append([]string{}, applicationNoise...)
	return append(out, platformRules[platform].noise...)
}
