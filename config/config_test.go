package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indexdata/ilsdriver/ils"
)

const sampleConfig = `
institutions:
  helmet:
    driver: axiell
    axiell:
      arenaMember: helmet
      catalogueURL: https://aurora.example.com/catalogue.wsdl
      patronURL: https://aurora.example.com/patron.wsdl
      loansURL: https://aurora.example.com/loans.wsdl
      paymentsURL: https://aurora.example.com/payments.wsdl
      reservationsURL: https://aurora.example.com/reservations.wsdl
      language: fi
      holds:
        defaultPickUpLocation: "10"
      loans:
        renewalLimit: 5
  satakirjastot:
    driver: mikromarc
    mikromarc:
      host: https://mm.example.com
      base: satakirjastot
      unit: "55"
      username: api
      password: secret
      language: fi
      onlinePayment:
        enabled: true
        minimumFee: 65
`

func TestParse(t *testing.T) {
	f, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, []string{"helmet", "satakirjastot"}, f.Names())

	helmet := f.Institutions["helmet"]
	require.NotNil(t, helmet.Axiell)
	assert.Equal(t, "helmet", helmet.Axiell.ArenaMember)
	assert.Equal(t, "10", helmet.Axiell.Holds.DefaultPickUpLocation)
	assert.Equal(t, 5, helmet.Axiell.Loans.RenewalLimit)

	sata := f.Institutions["satakirjastot"]
	require.NotNil(t, sata.Mikromarc)
	assert.Equal(t, "satakirjastot", sata.Mikromarc.Base)
	assert.True(t, sata.Mikromarc.OnlinePayment.Enabled)
	assert.Equal(t, int64(65), sata.Mikromarc.OnlinePayment.MinimumFee)
}

func TestParseUnknownField(t *testing.T) {
	_, err := Parse([]byte("institutions:\n  x:\n    driverr: axiell\n"))
	assert.Error(t, err)
}

func TestDriver(t *testing.T) {
	f, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	d, err := f.Driver("satakirjastot", nil, nil, nil)
	require.NoError(t, err)
	assert.True(t, d.SupportsMethod("MarkFeesAsPaid"))

	d, err = f.Driver("helmet", nil, nil, nil)
	require.NoError(t, err)
	assert.True(t, d.SupportsMethod("PatronLogin"))
	assert.False(t, d.SupportsMethod("ChangePassword"))
}

func TestDriverUnknownInstitution(t *testing.T) {
	f, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	_, err = f.Driver("nowhere", nil, nil, nil)
	var cfgErr *ils.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "institutions", cfgErr.Field)
}

func TestDriverSectionMismatch(t *testing.T) {
	f, err := Parse([]byte("institutions:\n  x:\n    driver: mikromarc\n"))
	require.NoError(t, err)

	_, err = f.Driver("x", nil, nil, nil)
	var cfgErr *ils.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "mikromarc", cfgErr.Field)
}
