package mailer

import (
	"fmt"

	"github.com/vanng822/go-premailer/premailer"
)

// InlineCSS moves <style> rules into inline style attributes so the markup
// survives email clients that strip style blocks.
func InlineCSS(htmlBody string) (string, error) {
	opts := premailer.NewOptions()
	opts.RemoveClasses = false
	pm, err := premailer.NewPremailerFromString(htmlBody, opts)
	if err != nil {
		return "", fmt.Errorf("failed to parse html for inlining: %w", err)
	}
	out, err := pm.Transform()
	if err != nil {
		return "", fmt.Errorf("failed to inline css: %w", err)
	}
	return out, nil
}
