// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// isURL reports whether location looks like a URL rather than a file path.
func isURL(location string) bool {
	return strings.Contains(location, "://")
}

// validateLocation validates a dataset location. Paths are accepted as-is;
// URLs must be http or https with a host and a file path.
func validateLocation(location, fieldName string) error {
	if location == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	if !isURL(location) {
		return nil
	}
	return validateHTTPURL(location, fieldName)
}

// validateHTTPURL validates that a URL is properly formatted for an HTTP/HTTPS download.
// Validates: scheme (http/https), host present, path present.
func validateHTTPURL(rawURL, fieldName string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %s", fieldName, parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}

	if parsedURL.Path == "" || parsedURL.Path == "/" {
		return fmt.Errorf("%s must name a file", fieldName)
	}

	return nil
}
