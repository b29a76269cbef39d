package llm

import (
	"context"
	"encoding/base64"
	"io"

	"github.com/readingroom/backend/config"
	"github.com/sashabaranov/go-openai"
	"k8s.io/klog/v2"
)

// SpeechClient 调用 /audio/speech 合成语音
type SpeechClient struct {
	client *openai.Client
	model  string
	voice  string
	format string
	policy Policy
}

func NewSpeechClient(cfg *config.Config, policy Policy) *SpeechClient {
	clientConfig := openai.DefaultConfig(cfg.LLM.APIKey)
	if cfg.LLM.APIURL != "" {
		clientConfig.BaseURL = cfg.LLM.APIURL
	}
	format := cfg.Speech.Format
	if format == "" {
		format = string(openai.SpeechResponseFormatMp3)
	}
	return &SpeechClient{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Speech.Model,
		voice:  cfg.Speech.Voice,
		format: format,
		policy: policy,
	}
}

// Format 音频格式，用于拼装 data URI 与对象存储 content type
func (c *SpeechClient) Format() string {
	return c.format
}

// Synthesize 返回完整的音频字节
func (c *SpeechClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	klog.V(6).Infof("[LLM] Speech 请求: model=%s, voice=%s, 文本长度=%d", c.model, c.voice, len(text))

	var audio []byte
	err := c.policy.Do(ctx, StageSpeech, func(ctx context.Context) error {
		resp, err := c.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
			Model:          openai.SpeechModel(c.model),
			Input:          text,
			Voice:          openai.SpeechVoice(c.voice),
			ResponseFormat: openai.SpeechResponseFormat(c.format),
		})
		if err != nil {
			return err
		}
		defer resp.Close()

		data, err := io.ReadAll(resp)
		if err != nil {
			return err
		}
		if len(data) == 0 {
			return ErrEmptyAudio
		}
		audio = data
		return nil
	})
	if err != nil {
		klog.Errorf("[LLM] Speech 失败: %v", err)
		return nil, err
	}
	return audio, nil
}

// DataURI 把音频编码为可直接播放的 data URI
func DataURI(format string, audio []byte) string {
	return "data:audio/" + format + ";base64," + base64.StdEncoding.EncodeToString(audio)
}
