package classifier_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/monphare/monphare/internal/domain/classifier"
	"github.com/monphare/monphare/internal/domain/entities"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		source   string
		expected entities.SourceKind
	}{
		{name: "should detect git:: prefix", source: "git::https://example.com/org/repo?ref=v1.0.0", expected: entities.SourceGit},
		{name: "should detect github.com host", source: "github.com/org/terraform-module-vpc", expected: entities.SourceGit},
		{name: "should detect .git suffix", source: "https://my-server.com/org/repo.git", expected: entities.SourceGit},
		{name: "should detect s3:: prefix", source: "s3::https://s3-eu-west-1.amazonaws.com/bucket/module.zip", expected: entities.SourceS3},
		{name: "should detect relative local path", source: "../modules/networking", expected: entities.SourceLocal},
		{name: "should detect dot-slash local path", source: "./modules/networking", expected: entities.SourceLocal},
		{name: "should detect absolute local path", source: "/opt/modules/networking", expected: entities.SourceLocal},
		{name: "should detect home-relative local path", source: "~/modules/networking", expected: entities.SourceLocal},
		{name: "should detect registry triplet", source: "hashicorp/consul/aws", expected: entities.SourceRegistry},
		{name: "should reject malformed registry-like source", source: "hashicorp/consul", expected: entities.SourceUnknown},
		{name: "should classify unrecognized source as unknown", source: "some-opaque-token", expected: entities.SourceUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// given
			source := tt.source

			// when
			result := classifier.Classify(source)

			// then
			assert.Equal(t, tt.expected, result.Kind)
		})
	}
}

func TestClassify_GitRef(t *testing.T) {
	t.Parallel()

	t.Run("should extract ref query parameter", func(t *testing.T) {
		t.Parallel()

		// given
		source := "git::https://example.com/org/repo?ref=v1.2.3"

		// when
		result := classifier.Classify(source)

		// then
		assert.Equal(t, "v1.2.3", result.GitRef)
		assert.NotContains(t, result.GitURL, "ref=")
	})

	t.Run("should leave ref empty when absent", func(t *testing.T) {
		t.Parallel()

		// given
		source := "git::https://example.com/org/repo"

		// when
		result := classifier.Classify(source)

		// then
		assert.Empty(t, result.GitRef)
	})
}

func TestClassify_CanonicalGitURL(t *testing.T) {
	t.Parallel()

	t.Run("should lowercase host and strip .git suffix", func(t *testing.T) {
		t.Parallel()

		// given
		source := "git::https://GitHub.com/org/Repo.git?ref=v1.0.0"

		// when
		result := classifier.Classify(source)

		// then
		assert.Equal(t, "https://github.com/org/Repo", result.GitURL)
	})
}

func TestClassify_RegistryTriplet(t *testing.T) {
	t.Parallel()

	t.Run("should split namespace, name, and provider", func(t *testing.T) {
		t.Parallel()

		// given
		source := "hashicorp/consul/aws"

		// when
		result := classifier.Classify(source)

		// then
		assert.Equal(t, "hashicorp", result.Namespace)
		assert.Equal(t, "consul", result.Name)
		assert.Equal(t, "aws", result.Provider)
	})
}
