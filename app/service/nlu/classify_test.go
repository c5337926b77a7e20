package nlu

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyExplicitFactBeatsGeneric(t *testing.T) {
	intent := Classify("remember fact mood as happy")

	require.Equal(t, ActionSaveFact, intent.Action)
	require.NotNil(t, intent.SaveFact)
	assert.Equal(t, "mood", intent.SaveFact.Key)
	assert.Equal(t, "happy", intent.SaveFact.Value)
}

func TestClassifyGenericFact(t *testing.T) {
	intent := Classify("my favorite color is blue")

	require.Equal(t, ActionSaveFact, intent.Action)
	require.NotNil(t, intent.SaveFact)
	assert.Equal(t, "favorite color", intent.SaveFact.Key)
	assert.Equal(t, "blue", intent.SaveFact.Value)
}

func TestClassifyPolitePrefixStripped(t *testing.T) {
	intent := Classify("Please remember fact mood as happy")

	require.Equal(t, ActionSaveFact, intent.Action)
	assert.Equal(t, "mood", intent.SaveFact.Key)
}

func TestClassifyTaskWithDue(t *testing.T) {
	intent := Classify("create task submit report due 8pm tomorrow")

	require.Equal(t, ActionCreateTask, intent.Action)
	require.NotNil(t, intent.CreateTask)
	assert.Equal(t, "submit report", intent.CreateTask.Title)
	require.NotNil(t, intent.CreateTask.Datetime)
	assert.Equal(t, 20, intent.CreateTask.Datetime.Hour())
	assert.Equal(t, PriorityMedium, intent.CreateTask.Priority)
	assert.Equal(t, "personal", intent.CreateTask.Category)
}

func TestClassifyTaskWithUnparsableDue(t *testing.T) {
	intent := Classify("create task submit report due whenever")

	require.Equal(t, ActionCreateTask, intent.Action)
	assert.Equal(t, "submit report", intent.CreateTask.Title)
	assert.Nil(t, intent.CreateTask.Datetime)
}

func TestClassifyRemindMeWithAtClause(t *testing.T) {
	intent := Classify("remind me to call mom at 8pm")

	require.Equal(t, ActionCreateTask, intent.Action)
	assert.Equal(t, "call mom", intent.CreateTask.Title)
	require.NotNil(t, intent.CreateTask.Datetime)
	assert.Equal(t, 20, intent.CreateTask.Datetime.Hour())
}

func TestClassifyRemindMeEmbeddedTime(t *testing.T) {
	intent := Classify("remind me to call mom in 2 hours")

	require.Equal(t, ActionCreateTask, intent.Action)
	assert.Equal(t, "call mom", intent.CreateTask.Title)
	assert.NotNil(t, intent.CreateTask.Datetime)
}

func TestClassifyRemindMeNoTime(t *testing.T) {
	intent := Classify("remind me to water the plants")

	require.Equal(t, ActionCreateTask, intent.Action)
	assert.Equal(t, "water the plants", intent.CreateTask.Title)
	assert.Nil(t, intent.CreateTask.Datetime)
}

func TestClassifyFlexibleTask(t *testing.T) {
	intent := Classify("add me a task to buy groceries at 7pm")

	require.Equal(t, ActionCreateTask, intent.Action)
	assert.Equal(t, "buy groceries", intent.CreateTask.Title)
	require.NotNil(t, intent.CreateTask.Datetime)
	assert.Equal(t, 19, intent.CreateTask.Datetime.Hour())
}

func TestClassifyFetchTasks(t *testing.T) {
	for _, msg := range []string{"show tasks", "list tasks please", "what are my tasks"} {
		intent := Classify(msg)
		assert.Equal(t, ActionFetchTasks, intent.Action, "message %q", msg)
	}
}

func TestClassifyChatHistory(t *testing.T) {
	for _, msg := range []string{"show chat history", "show me my last chats", "previous messages"} {
		intent := Classify(msg)
		assert.Equal(t, ActionGetChatHistory, intent.Action, "message %q", msg)
	}
}

func TestClassifyYouTube(t *testing.T) {
	intent := Classify("play lofi on youtube")

	require.Equal(t, ActionOpenExternal, intent.Action)
	require.NotNil(t, intent.OpenExternal)
	assert.Equal(t, TargetYouTube, intent.OpenExternal.Target)
	assert.Equal(t, "lofi", intent.OpenExternal.Query)
}

func TestClassifyYouTubeInformationalGuard(t *testing.T) {
	intent := Classify("what is youtube used for?")
	assert.Equal(t, ActionGeneralChat, intent.Action)
}

func TestClassifyYouTubeActionOnly(t *testing.T) {
	intent := Classify("open youtube")

	require.Equal(t, ActionOpenExternal, intent.Action)
	assert.Equal(t, TargetYouTube, intent.OpenExternal.Target)
	assert.Empty(t, intent.OpenExternal.Query)
}

func TestClassifyMaps(t *testing.T) {
	intent := Classify("navigate to airport")

	require.Equal(t, ActionOpenExternal, intent.Action)
	assert.Equal(t, TargetMaps, intent.OpenExternal.Target)
	assert.Equal(t, "airport", intent.OpenExternal.Query)
}

func TestClassifySpotify(t *testing.T) {
	intent := Classify("play jazz on spotify")

	require.Equal(t, ActionOpenExternal, intent.Action)
	assert.Equal(t, TargetSpotify, intent.OpenExternal.Target)
	assert.Equal(t, "jazz", intent.OpenExternal.Query)
}

func TestClassifyWhatsApp(t *testing.T) {
	intent := Classify("whatsapp: hello there")

	require.Equal(t, ActionOpenExternal, intent.Action)
	assert.Equal(t, TargetWhatsApp, intent.OpenExternal.Target)
	assert.Equal(t, "hello there", intent.OpenExternal.Query)
}

func TestClassifyInstagram(t *testing.T) {
	intent := Classify("open instagram and search for sunsets")

	require.Equal(t, ActionOpenExternal, intent.Action)
	assert.Equal(t, TargetInstagram, intent.OpenExternal.Target)
	assert.Equal(t, "sunsets", intent.OpenExternal.Query)
}

func TestClassifyGeneralChatFallback(t *testing.T) {
	for _, msg := range []string{"how are you?", "tell me a joke", "what's the weather like"} {
		intent := Classify(msg)
		assert.Equal(t, ActionGeneralChat, intent.Action, "message %q", msg)
	}
}

func TestClassifyIdempotent(t *testing.T) {
	first := Classify("remind me to call mom at 8pm")
	second := Classify("remind me to call mom at 8pm")

	assert.Equal(t, first, second)
}

func TestIntentJSONRoundTrip(t *testing.T) {
	intent := Classify("play lofi on youtube")

	raw, err := json.Marshal(intent)
	require.NoError(t, err)
	assert.JSONEq(t, `{"action":"open_external","data":{"target":"youtube","query":"lofi"}}`, string(raw))

	var decoded Intent
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, intent, decoded)
}

func TestBuildOpenURL(t *testing.T) {
	assert.Equal(t, "https://www.youtube.com/results?search_query=lofi+beats", BuildOpenURL(TargetYouTube, "lofi beats"))
	assert.Equal(t, "https://www.youtube.com/", BuildOpenURL(TargetYouTube, ""))
	assert.Equal(t, "https://www.google.com/maps/search/airport", BuildOpenURL(TargetMaps, "airport"))
	assert.Equal(t, "https://wa.me/?text=hello", BuildOpenURL(TargetWhatsApp, "hello"))
	assert.Equal(t, "https://open.spotify.com/search/jazz", BuildOpenURL(TargetSpotify, "jazz"))
	assert.Equal(t, "https://www.instagram.com/explore/tags/sunset%20beach/", BuildOpenURL(TargetInstagram, "sunset beach"))
}
