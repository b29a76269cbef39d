package llm

import (
	"context"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/readingroom/backend/config"
	"k8s.io/klog/v2"
)

// NewChatModel 创建 OpenAI 兼容的 ChatModel
func NewChatModel(ctx context.Context, cfg *config.Config) (*openai.ChatModel, error) {
	maxTokens := cfg.LLM.MaxTokens
	modelConfig := &openai.ChatModelConfig{
		BaseURL: cfg.LLM.APIURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
	}
	if maxTokens > 0 {
		modelConfig.MaxTokens = &maxTokens
	}

	chatModel, err := openai.NewChatModel(ctx, modelConfig)
	if err != nil {
		klog.Errorf("[LLM] 创建 ChatModel 失败: %v", err)
		return nil, err
	}

	klog.V(6).Infof("[LLM] ChatModel 创建成功: model=%s", cfg.LLM.Model)
	return chatModel, nil
}

// ChatClient 单轮对话，带重试策略
type ChatClient struct {
	model  model.BaseChatModel
	policy Policy
}

func NewChatClient(m model.BaseChatModel, policy Policy) *ChatClient {
	return &ChatClient{model: m, policy: policy}
}

// Complete 发送单条用户消息，返回首个候选的内容，没有内容时返回空串
func (c *ChatClient) Complete(ctx context.Context, prompt string) (string, error) {
	klog.V(6).Infof("[LLM] Chat 请求: prompt 长度=%d", len(prompt))

	var content string
	err := c.policy.Do(ctx, StageChat, func(ctx context.Context) error {
		resp, err := c.model.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
		if err != nil {
			return err
		}
		content = ""
		if resp != nil {
			content = resp.Content
		}
		return nil
	})
	if err != nil {
		klog.Errorf("[LLM] Chat 失败: %v", err)
		return "", err
	}

	klog.V(6).Infof("[LLM] Chat 完成: 响应长度=%d", len(content))
	return content, nil
}
