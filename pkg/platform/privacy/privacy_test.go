package privacy

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	id "confessional/pkg/domain"
	dErrors "confessional/pkg/domain-errors"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestAnonymizeIP(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "ipv4 standard address", input: "192.168.1.47", expected: "192.168.1.0"},
		{name: "ipv4 localhost", input: "127.0.0.1", expected: "127.0.0.0"},
		{name: "ipv4-mapped ipv6", input: "::ffff:10.1.2.3", expected: "10.1.2.0"},
		{name: "ipv6 full address", input: "2001:db8:85a3::8a2e:370:7334", expected: "2001:db8:85a3::"},
		{name: "empty", input: "", expected: "unknown"},
		{name: "unknown marker", input: "unknown", expected: "unknown"},
		{name: "garbage", input: "not-an-ip", expected: "invalid"},
		{name: "address with port", input: "192.168.1.1:8080", expected: "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AnonymizeIP(tt.input))
		})
	}
}

func TestAnonymizeIP_SameNetworkProducesSameOutput(t *testing.T) {
	for _, ip := range []string{"192.168.1.1", "192.168.1.100", "192.168.1.255"} {
		assert.Equal(t, "192.168.1.0", AnonymizeIP(ip))
	}
	assert.NotEqual(t, AnonymizeIP("192.168.1.47"), AnonymizeIP("192.168.2.47"))
}

type AnonymizerSuite struct {
	suite.Suite
	anonymizer *Anonymizer
}

func TestAnonymizerSuite(t *testing.T) {
	suite.Run(t, new(AnonymizerSuite))
}

func (s *AnonymizerSuite) SetupTest() {
	a, err := NewAnonymizer(testSecret)
	s.Require().NoError(err)
	s.anonymizer = a
}

func (s *AnonymizerSuite) TestConstruction() {
	s.Run("missing secret is a configuration error", func() {
		_, err := NewAnonymizer("")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConfiguration))
	})

	s.Run("short secret is a configuration error", func() {
		_, err := NewAnonymizer("short")
		s.True(dErrors.HasCode(err, dErrors.CodeConfiguration))
	})
}

func (s *AnonymizerSuite) TestTokenIsDeterministicAndFixedLength() {
	principalID := id.NewPrincipalID()
	first := s.anonymizer.Token(principalID)
	second := s.anonymizer.Token(principalID)

	s.Equal(first, second)
	s.Len(first.String(), 64)
	s.NotContains(first.String(), principalID.String())
}

func (s *AnonymizerSuite) TestTokenDependsOnSecret() {
	other, err := NewAnonymizer(strings.Repeat("z", MinSecretLength))
	s.Require().NoError(err)

	principalID := id.NewPrincipalID()
	s.NotEqual(s.anonymizer.Token(principalID), other.Token(principalID))
}

func (s *AnonymizerSuite) TestNoCollisionsAcrossSample() {
	if testing.Short() {
		s.T().Skip("collision sample skipped in short mode")
	}
	const n = 100_000
	seen := make(map[ActionToken]struct{}, n)
	for i := 0; i < n; i++ {
		token := s.anonymizer.Token(id.PrincipalID(uuid.New()))
		_, dup := seen[token]
		require.False(s.T(), dup, "collision at sample %d", i)
		seen[token] = struct{}{}
	}
}
