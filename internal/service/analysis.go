package service

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/readingroom/backend/internal/model"
	"github.com/readingroom/backend/internal/pkg/cache"
	"github.com/readingroom/backend/internal/pkg/llm"
	"github.com/readingroom/backend/internal/pkg/storage"
	"k8s.io/klog/v2"
)

// audioLinkExpiry 归档音频下载链接的有效期
const audioLinkExpiry = 24 * time.Hour

// ChatCompleter 单轮对话
type ChatCompleter interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// SpeechSynthesizer 文本转语音
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
	Format() string
}

// ResultCache 分析结果缓存，未命中返回 ok=false
type ResultCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// AnalyzeRequest /api/analyze 请求体，type 接受 요약/적용 或 summary/application
type AnalyzeRequest struct {
	Content     string `json:"content"`
	Type        string `json:"type"`
	Keyword     string `json:"keyword"`
	OpeningMent string `json:"openingMent"`
	ClosingMent string `json:"closingMent"`
}

// KeywordAnalyzeRequest 高级分析与比较分析请求体
type KeywordAnalyzeRequest struct {
	Content string `json:"content"`
	Keyword string `json:"keyword"`
}

type TranscriptRequest struct {
	Transcript string `json:"transcript"`
}

type SpeechRequest struct {
	Text string `json:"text"`
}

type AnalysisResponse struct {
	Analysis         string `json:"analysis"`
	AudioURL         string `json:"audioUrl"`
	AudioKey         string `json:"audioKey,omitempty"`
	AudioDownloadURL string `json:"audioDownloadUrl,omitempty"`
}

type AdvancedResponse struct {
	Analysis         string `json:"analysis"`
	ImprovedReport   string `json:"improvedReport"`
	AudioURL         string `json:"audioUrl"`
	AudioKey         string `json:"audioKey,omitempty"`
	AudioDownloadURL string `json:"audioDownloadUrl,omitempty"`
}

type CompareResponse struct {
	Comparison       string `json:"comparison"`
	AudioURL         string `json:"audioUrl"`
	AudioKey         string `json:"audioKey,omitempty"`
	AudioDownloadURL string `json:"audioDownloadUrl,omitempty"`
}

type SpeechResponse struct {
	AudioURL         string `json:"audioUrl"`
	AudioKey         string `json:"audioKey,omitempty"`
	AudioDownloadURL string `json:"audioDownloadUrl,omitempty"`
}

// pipelineResult 也是缓存中保存的内容，预签名链接会过期，不入缓存
type pipelineResult struct {
	Text        string `json:"text"`
	AudioURL    string `json:"audioUrl"`
	AudioKey    string `json:"audioKey,omitempty"`
	DownloadURL string `json:"-"`
}

type AnalysisService struct {
	chat    ChatCompleter
	speech  SpeechSynthesizer
	cache   ResultCache
	archive storage.ObjectStore
	now     func() time.Time
}

func NewAnalysisService(chat ChatCompleter, speech SpeechSynthesizer) *AnalysisService {
	return &AnalysisService{chat: chat, speech: speech, now: time.Now}
}

// WithCache 启用结果缓存，Redis 故障时直接跳过缓存
func (s *AnalysisService) WithCache(c ResultCache) *AnalysisService {
	s.cache = c
	return s
}

// WithArchive 合成的音频同时上传到对象存储
func (s *AnalysisService) WithArchive(store storage.ObjectStore) *AnalysisService {
	s.archive = store
	return s
}

func (s *AnalysisService) Analyze(ctx context.Context, req *AnalyzeRequest) (*AnalysisResponse, error) {
	if req == nil || strings.TrimSpace(req.Content) == "" {
		return nil, invalid("content", MsgMissingData)
	}
	mt, err := model.ParseMaterialType(req.Type)
	if err != nil {
		return nil, invalid("type", MsgUnknownType)
	}

	res, err := s.run(ctx, taskForType(mt), req.Content, req.Keyword, req.OpeningMent, req.ClosingMent)
	if err != nil {
		return nil, err
	}
	return &AnalysisResponse{Analysis: res.Text, AudioURL: res.AudioURL, AudioKey: res.AudioKey, AudioDownloadURL: res.DownloadURL}, nil
}

func (s *AnalysisService) AnalyzeAdvanced(ctx context.Context, req *KeywordAnalyzeRequest) (*AdvancedResponse, error) {
	if err := validateKeywordRequest(req); err != nil {
		return nil, err
	}
	res, err := s.run(ctx, TaskAdvanced, req.Content, req.Keyword, "", "")
	if err != nil {
		return nil, err
	}
	return &AdvancedResponse{
		Analysis:         res.Text,
		ImprovedReport:   res.Text,
		AudioURL:         res.AudioURL,
		AudioKey:         res.AudioKey,
		AudioDownloadURL: res.DownloadURL,
	}, nil
}

func (s *AnalysisService) AnalyzeCompare(ctx context.Context, req *KeywordAnalyzeRequest) (*CompareResponse, error) {
	if err := validateKeywordRequest(req); err != nil {
		return nil, err
	}
	res, err := s.run(ctx, TaskCompare, req.Content, req.Keyword, "", "")
	if err != nil {
		return nil, err
	}
	return &CompareResponse{Comparison: res.Text, AudioURL: res.AudioURL, AudioKey: res.AudioKey, AudioDownloadURL: res.DownloadURL}, nil
}

func (s *AnalysisService) AnalyzeTranscript(ctx context.Context, req *TranscriptRequest) (*AnalysisResponse, error) {
	if req == nil || strings.TrimSpace(req.Transcript) == "" {
		return nil, invalid("transcript", MsgMissingTranscript)
	}
	res, err := s.run(ctx, TaskTranscript, req.Transcript, "", "", "")
	if err != nil {
		return nil, err
	}
	return &AnalysisResponse{Analysis: res.Text, AudioURL: res.AudioURL, AudioKey: res.AudioKey, AudioDownloadURL: res.DownloadURL}, nil
}

// Speak 只做语音合成，用于计时提示等短文本
func (s *AnalysisService) Speak(ctx context.Context, req *SpeechRequest) (*SpeechResponse, error) {
	if req == nil || strings.TrimSpace(req.Text) == "" {
		return nil, invalid("text", MsgMissingText)
	}
	url, key, err := s.synthesize(ctx, req.Text)
	if err != nil {
		return nil, err
	}
	return &SpeechResponse{AudioURL: url, AudioKey: key, AudioDownloadURL: s.downloadURL(ctx, key)}, nil
}

func validateKeywordRequest(req *KeywordAnalyzeRequest) error {
	if req == nil || strings.TrimSpace(req.Content) == "" || strings.TrimSpace(req.Keyword) == "" {
		return invalid("", MsgMissingData)
	}
	return nil
}

// run 提示词 -> 对话 -> 拼装播报文本 -> 语音合成，任一阶段失败都不返回音频
func (s *AnalysisService) run(ctx context.Context, task Task, content, keyword, opening, closing string) (*pipelineResult, error) {
	key := cache.Key("analysis", string(task), content, keyword, opening, closing)
	if res, ok := s.cached(ctx, key); ok {
		klog.V(6).Infof("[AI] 命中分析缓存: task=%s", task)
		res.DownloadURL = s.downloadURL(ctx, res.AudioKey)
		return res, nil
	}

	prompt := BuildPrompt(task, content, keyword)
	klog.V(6).Infof("[AI] 开始分析: task=%s, 内容长度=%d", task, len(content))
	text, err := s.chat.Complete(ctx, prompt)
	if err != nil {
		klog.Errorf("[AI] 分析失败: task=%s, err=%v", task, err)
		return nil, err
	}

	speechText := SpeechText(task, text, opening, closing)
	url, audioKey, err := s.synthesize(ctx, speechText)
	if err != nil {
		return nil, err
	}

	res := &pipelineResult{Text: text, AudioURL: url, AudioKey: audioKey}
	s.store(ctx, key, res)
	res.DownloadURL = s.downloadURL(ctx, audioKey)
	klog.V(6).Infof("[AI] 分析完成: task=%s, 分析长度=%d", task, len(text))
	return res, nil
}

func (s *AnalysisService) synthesize(ctx context.Context, text string) (url, key string, err error) {
	audio, err := s.speech.Synthesize(ctx, text)
	if err != nil {
		klog.Errorf("[AI] 语音合成失败: err=%v", err)
		return "", "", err
	}
	format := s.speech.Format()
	return llm.DataURI(format, audio), s.archiveAudio(ctx, audio, format), nil
}

func (s *AnalysisService) archiveAudio(ctx context.Context, audio []byte, format string) string {
	if s.archive == nil {
		return ""
	}
	key := storage.AudioKey(s.now(), uuid.NewString(), format)
	if err := s.archive.Put(ctx, key, bytes.NewReader(audio), int64(len(audio)), "audio/"+contentSubtype(format)); err != nil {
		klog.Warningf("[AI] 音频归档失败，仅返回 data URI: key=%s, err=%v", key, err)
		return ""
	}
	return key
}

// downloadURL 为归档音频生成限时下载链接，失败时只返回空串
func (s *AnalysisService) downloadURL(ctx context.Context, key string) string {
	if s.archive == nil || key == "" {
		return ""
	}
	u, err := s.archive.PresignGet(ctx, key, audioLinkExpiry)
	if err != nil {
		klog.Warningf("[AI] 生成音频下载链接失败: key=%s, err=%v", key, err)
		return ""
	}
	return u
}

func contentSubtype(format string) string {
	if format == "mp3" {
		return "mpeg"
	}
	return format
}

func (s *AnalysisService) cached(ctx context.Context, key string) (*pipelineResult, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		klog.Warningf("[AI] 读取分析缓存失败: %v", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var res pipelineResult
	if err := json.Unmarshal(data, &res); err != nil {
		klog.Warningf("[AI] 分析缓存内容损坏: %v", err)
		return nil, false
	}
	return &res, true
}

func (s *AnalysisService) store(ctx context.Context, key string, res *pipelineResult) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data); err != nil {
		klog.Warningf("[AI] 写入分析缓存失败: %v", err)
	}
}
