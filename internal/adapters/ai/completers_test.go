package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"google.golang.org/genai"
)

func TestOpenAICompleter(t *testing.T) {
	Convey("Given an OpenAI-compatible server", t, func() {
		var got chatRequest
		var headers http.Header
		status := http.StatusOK
		reply := `{"choices":[{"message":{"role":"assistant","content":"What is REST?"}}]}`

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			headers = r.Header.Clone()
			_ = json.NewDecoder(r.Body).Decode(&got)
			w.WriteHeader(status)
			_, _ = w.Write([]byte(reply))
		}))
		defer srv.Close()

		c, err := NewOpenAICompleter("secret", WithBaseURL(srv.URL+"/"), WithReferer("http://localhost:8080"))
		So(err, ShouldBeNil)

		Convey("When a JSON prompt is completed", func() {
			out, err := c.Complete(context.Background(), Prompt{System: "sys", User: "usr", JSON: true})

			Convey("Then the request carries messages, format and headers", func() {
				So(err, ShouldBeNil)
				So(out, ShouldEqual, "What is REST?")
				So(got.Model, ShouldEqual, DefaultOpenAIModel)
				So(got.Messages, ShouldResemble, []chatMessage{{Role: "system", Content: "sys"}, {Role: "user", Content: "usr"}})
				So(got.ResponseFormat, ShouldNotBeNil)
				So(got.ResponseFormat.Type, ShouldEqual, "json_object")
				So(headers.Get("Authorization"), ShouldEqual, "Bearer secret")
				So(headers.Get("HTTP-Referer"), ShouldEqual, "http://localhost:8080")
				So(headers.Get("X-Title"), ShouldEqual, "Swipe Interview Assistant")
			})
		})

		Convey("When the server answers non-2xx", func() {
			status = http.StatusTooManyRequests
			reply = `{"error":{"message":"rate limited"}}`
			_, err := c.Complete(context.Background(), Prompt{User: "usr"})
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "429")
		})

		Convey("When the body carries an error object", func() {
			reply = `{"error":{"message":"model not found","code":404}}`
			_, err := c.Complete(context.Background(), Prompt{User: "usr"})
			So(err, ShouldNotBeNil)
		})

		Convey("When used through the gateway without choices", func() {
			reply = `{"choices":[]}`
			_, err := NewGateway(c).GenerateQuestion(context.Background(), "easy")
			So(errors.Is(err, ErrAIResponse), ShouldBeTrue)
		})
	})

	Convey("Given no api key", t, func() {
		_, err := NewOpenAICompleter(" ")
		So(err, ShouldNotBeNil)
	})
}

type fakeModels struct {
	model  string
	config *genai.GenerateContentConfig
	user   string
	resp   *genai.GenerateContentResponse
	err    error
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.config = config
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.user = contents[0].Parts[0].Text
	}
	return f.resp, f.err
}

func TestGeminiCompleter(t *testing.T) {
	Convey("Given a Gemini completer over fake models", t, func() {
		fake := &fakeModels{resp: &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{{Text: `{"score": 8,`}, {Text: ` "feedback": "ok"}`}}},
			}},
		}}
		c := &GeminiCompleter{models: fake, model: defaultGeminiModel}

		Convey("When a JSON prompt is completed", func() {
			out, err := c.Complete(context.Background(), Prompt{System: "sys", User: "usr", JSON: true})

			Convey("Then parts are joined and the config carries system and mime type", func() {
				So(err, ShouldBeNil)
				So(out, ShouldEqual, "{\"score\": 8,\n\"feedback\": \"ok\"}")
				So(fake.model, ShouldEqual, defaultGeminiModel)
				So(fake.user, ShouldEqual, "usr")
				So(fake.config.ResponseMIMEType, ShouldEqual, "application/json")
				So(fake.config.SystemInstruction.Parts[0].Text, ShouldEqual, "sys")
			})
		})

		Convey("When the API fails", func() {
			fake.err = errors.New("quota")
			_, err := c.Complete(context.Background(), Prompt{User: "usr"})
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given no api key", t, func() {
		_, err := NewGeminiCompleter(context.Background(), "", "")
		So(err, ShouldNotBeNil)
	})
}
