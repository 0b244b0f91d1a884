package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/favcart/internal/apitest"
	"github.com/Skotchmaster/favcart/internal/client"
)

func TestNewRootCommand_Flags(t *testing.T) {
	t.Setenv("FAVCART_API", "http://shop.test/api")
	cmd := NewRootCommand()

	api := cmd.PersistentFlags().Lookup("api")
	require.NotNil(t, api)
	assert.Equal(t, "http://shop.test/api", api.DefValue)

	timeout := cmd.PersistentFlags().Lookup("timeout")
	require.NotNil(t, timeout)
	assert.Equal(t, client.DefaultTimeout.String(), timeout.DefValue)

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"shell", "products"}, names)
}

func TestNewRootCommand_RejectsZeroTimeout(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--timeout", "0s", "products"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid timeout")
}

func TestProductsCommand_ListsCatalog(t *testing.T) {
	apiURL := apitest.NewServer(t)
	ctx := context.Background()

	hc, err := client.NewHTTPClient(apiURL, 5*time.Second)
	require.NoError(t, err)
	seller := client.NewStore(hc, nil)
	require.NoError(t, seller.SignUp(ctx, client.SignupInput{FullName: "Seller", Email: "seller@example.com", Password: "secret1"}))
	_, err = seller.AddProduct(ctx, client.ProductInput{
		Name: "Mug", Description: "Ceramic", Price: 7.25, Ratings: 3.5, Image: "https://img.example.com/mug.png",
	})
	require.NoError(t, err)

	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--api", apiURL, "products"})
	require.NoError(t, cmd.Execute())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "Mug")
	assert.Contains(t, lines[1], "7.25")
	assert.Contains(t, lines[1], "Seller")
}

func TestShellCommand_RunsScript(t *testing.T) {
	apiURL := apitest.NewServer(t)
	capturePrintln(t)
	stubTerminal(t, false, "", nil)

	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(strings.Join([]string{
		"signup", "Bob", "bob@example.com", "secret1",
		"cart",
		"exit",
	}, "\n")))
	cmd.SetArgs([]string{"--api", apiURL, "shell"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "[success]")
	assert.Contains(t, out.String(), "TOTAL")
}
