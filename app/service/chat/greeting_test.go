package chat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsGreeting(t *testing.T) {
	require.True(t, IsGreeting("hi"))
	require.True(t, IsGreeting("  Hello there!"))
	require.True(t, IsGreeting("good morning dear assistant,"))

	// "hi" inside a longer word is not a greeting
	require.False(t, IsGreeting("history of rome"))
	require.False(t, IsGreeting("what time is it"))
}

func TestStripLeadingGreeting(t *testing.T) {
	// punctuation glued to the greeting word stops token consumption
	require.Equal(t, "So, tell me, what can I do for fun?",
		StripLeadingGreeting("Hey! So, tell me, what can I do for fun?"))

	// up to three whitespace-separated tokens after the greeting are dropped
	require.Equal(t, "you doing today?",
		StripLeadingGreeting("Hello John, how are you doing today?"))

	// a reply that is nothing but a greeting is kept as is
	require.Equal(t, "Hello there!", StripLeadingGreeting("Hello there!"))

	require.Equal(t, "no greeting here", StripLeadingGreeting("no greeting here"))
}
