package mcpserver

import (
	"encoding/json"
	"strings"
)

const (
	manifestSchema = "https://static.modelcontextprotocol.io/schemas/2025-10-17/server.schema.json"
	serverName     = "io.github.panbanda/churnscope"
	sourceURL      = "https://github.com/panbanda/churnscope"
	image          = "ghcr.io/panbanda/churnscope"
)

// Manifest is the registry entry (server.json) published for each release.
// Only the fields churnscope fills in are modeled.
type Manifest struct {
	Schema      string `json:"$schema"`
	Name        string `json:"name"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description"`
	Version     string `json:"version"`
	WebsiteURL  string `json:"websiteUrl,omitempty"`
	Repository  *struct {
		URL    string `json:"url"`
		Source string `json:"source"`
	} `json:"repository,omitempty"`
	Packages []ManifestPackage `json:"packages,omitempty"`
}

// ManifestPackage is one way to install and start the server. churnscope
// ships a container image whose entrypoint takes the "mcp" subcommand.
type ManifestPackage struct {
	RegistryType     string `json:"registryType"`
	Identifier       string `json:"identifier"`
	PackageArguments []struct {
		Type  string `json:"type"`
		Value string `json:"value,omitempty"`
	} `json:"packageArguments,omitempty"`
	Transport struct {
		Type string `json:"type"`
	} `json:"transport"`
}

// GenerateManifest renders server.json for version. A leading "v" is
// dropped since the registry expects bare semver.
func GenerateManifest(version string) ([]byte, error) {
	version = strings.TrimPrefix(version, "v")
	if version == "" || version == "dev" {
		version = "0.0.0"
	}

	pkg := ManifestPackage{RegistryType: "oci", Identifier: image + ":" + version}
	pkg.PackageArguments = append(pkg.PackageArguments, struct {
		Type  string `json:"type"`
		Value string `json:"value,omitempty"`
	}{Type: "positional", Value: "mcp"})
	pkg.Transport.Type = "stdio"

	m := Manifest{
		Schema:      manifestSchema,
		Name:        serverName,
		Title:       "churnscope",
		Description: "Change frequency and contributor risk report for git repositories",
		Version:     version,
		WebsiteURL:  sourceURL,
		Packages:    []ManifestPackage{pkg},
	}
	m.Repository = &struct {
		URL    string `json:"url"`
		Source string `json:"source"`
	}{URL: sourceURL, Source: "github"}

	return json.MarshalIndent(m, "", "  ")
}
