package speech

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"
)

// LiveOptions 配置一次实时转写流.
type LiveOptions struct {
	Model          string        // 默认取 DeepgramConfig.Model
	Language       string        // ISO-639-1
	Encoding       string        // linear16, opus, ... 默认 linear16
	SampleRate     int           // 默认 16000
	Channels       int           // 默认 1
	InterimResults bool          // 是否下发中间结果
	Endpointing    time.Duration // 触发 speech_final 的尾部静音窗口, 默认 300ms
	KeepAlive      time.Duration // KeepAlive 心跳间隔, 默认 5s, 负值禁用
}

// Transcript 是实时流下发的一条转写.
// IsFinal 表示该分片的文本不会再被修订;
// SpeechFinal 表示端点检测判定整句话语结束。
type Transcript struct {
	Text        string
	Confidence  float64
	IsFinal     bool
	SpeechFinal bool
	Start       time.Duration
	Duration    time.Duration
}

// LiveTranscription 是一条到 Deepgram 的实时转写流.
// 音频帧通过 SendAudio 写入, 转写结果从 Results 读出。
// 流不做自动重连, 失败后由调用方重新建流。
type LiveTranscription struct {
	conn   *websocket.Conn
	logger *zap.Logger

	results chan Transcript
	done    chan struct{}

	writeMu   sync.Mutex
	closeOnce sync.Once

	errMu sync.Mutex
	err   error
}

// deepgramLiveMessage 覆盖实时流下发的所有消息类型,
// 按 Type 区分: Results / Metadata / UtteranceEnd / SpeechStarted.
type deepgramLiveMessage struct {
	Type     string  `json:"type"`
	IsFinal  bool    `json:"is_final"`
	Final    bool    `json:"speech_final"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
	Channel  struct {
		Alternatives []struct {
			Transcript string  `json:"transcript"`
			Confidence float64 `json:"confidence"`
		} `json:"alternatives"`
	} `json:"channel"`
}

type deepgramControlMessage struct {
	Type string `json:"type"`
}

// Live 建立实时转写流. ctx 约束整个流的生命周期,
// 取消后读循环结束并关闭 Results。
func (p *DeepgramRecognizer) Live(ctx context.Context, opts LiveOptions, logger *zap.Logger) (*LiveTranscription, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	model := opts.Model
	if model == "" {
		model = p.cfg.Model
	}
	encoding := opts.Encoding
	if encoding == "" {
		encoding = "linear16"
	}
	sampleRate := opts.SampleRate
	if sampleRate == 0 {
		sampleRate = 16000
	}
	channels := opts.Channels
	if channels == 0 {
		channels = 1
	}
	endpointing := opts.Endpointing
	if endpointing == 0 {
		endpointing = 300 * time.Millisecond
	}
	keepAlive := opts.KeepAlive
	if keepAlive == 0 {
		keepAlive = 5 * time.Second
	}

	params := url.Values{}
	params.Set("model", model)
	params.Set("encoding", encoding)
	params.Set("sample_rate", strconv.Itoa(sampleRate))
	params.Set("channels", strconv.Itoa(channels))
	params.Set("punctuate", "true")
	params.Set("smart_format", "true")
	params.Set("endpointing", strconv.FormatInt(endpointing.Milliseconds(), 10))
	if opts.InterimResults {
		params.Set("interim_results", "true")
	}
	if opts.Language != "" {
		params.Set("language", opts.Language)
	}

	endpoint := fmt.Sprintf("%s/v1/listen?%s", httpToWS(p.cfg.BaseURL), params.Encode())

	conn, _, err := websocket.Dial(ctx, endpoint, &websocket.DialOptions{
		HTTPHeader: http.Header{"Authorization": []string{"Token " + p.cfg.APIKey}},
	})
	if err != nil {
		return nil, fmt.Errorf("deepgram live connect: %w", err)
	}

	lt := &LiveTranscription{
		conn:    conn,
		logger:  logger.With(zap.String("component", "deepgram_live")),
		results: make(chan Transcript, 16),
		done:    make(chan struct{}),
	}

	go lt.readLoop(ctx)
	if keepAlive > 0 {
		go lt.keepAliveLoop(ctx, keepAlive)
	}

	return lt, nil
}

// httpToWS 把 http(s) 基地址转换为 ws(s).
func httpToWS(base string) string {
	base = strings.TrimRight(base, "/")
	switch {
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		return "ws://" + strings.TrimPrefix(base, "http://")
	default:
		return base
	}
}

// SendAudio 写入一帧音频. 写操作通过 mutex 保护,
// 因为 WebSocket 不支持并发写。
func (lt *LiveTranscription) SendAudio(ctx context.Context, frame []byte) error {
	select {
	case <-lt.done:
		return fmt.Errorf("deepgram live: stream is closed")
	default:
	}

	lt.writeMu.Lock()
	defer lt.writeMu.Unlock()
	if err := lt.conn.Write(ctx, websocket.MessageBinary, frame); err != nil {
		return fmt.Errorf("deepgram live send: %w", err)
	}
	return nil
}

// Results 返回转写结果通道. 流结束后通道关闭,
// Err 报告非正常结束的原因。
func (lt *LiveTranscription) Results() <-chan Transcript {
	return lt.results
}

// Err 返回读循环的终止错误. 正常关闭返回 nil.
func (lt *LiveTranscription) Err() error {
	lt.errMu.Lock()
	defer lt.errMu.Unlock()
	return lt.err
}

// Close 通知服务端冲刷剩余音频并关闭连接.
func (lt *LiveTranscription) Close(ctx context.Context) error {
	var err error
	lt.closeOnce.Do(func() {
		payload, _ := json.Marshal(deepgramControlMessage{Type: "CloseStream"})

		lt.writeMu.Lock()
		writeErr := lt.conn.Write(ctx, websocket.MessageText, payload)
		lt.writeMu.Unlock()
		if writeErr != nil {
			lt.logger.Debug("close stream notify failed", zap.Error(writeErr))
		}

		close(lt.done)
		err = lt.conn.Close(websocket.StatusNormalClosure, "closing")
	})
	return err
}

func (lt *LiveTranscription) setErr(err error) {
	lt.errMu.Lock()
	defer lt.errMu.Unlock()
	if lt.err == nil {
		lt.err = err
	}
}

func (lt *LiveTranscription) readLoop(ctx context.Context) {
	defer close(lt.results)

	for {
		_, data, err := lt.conn.Read(ctx)
		if err != nil {
			select {
			case <-ctx.Done():
				lt.setErr(ctx.Err())
			case <-lt.done:
				// 主动关闭, 不算错误
			default:
				lt.setErr(fmt.Errorf("deepgram live read: %w", err))
			}
			return
		}

		var msg deepgramLiveMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			lt.logger.Warn("undecodable live message", zap.Error(err))
			continue
		}

		if msg.Type != "Results" || len(msg.Channel.Alternatives) == 0 {
			continue
		}

		alt := msg.Channel.Alternatives[0]
		if alt.Transcript == "" {
			continue
		}

		tr := Transcript{
			Text:        alt.Transcript,
			Confidence:  alt.Confidence,
			IsFinal:     msg.IsFinal,
			SpeechFinal: msg.Final,
			Start:       time.Duration(msg.Start * float64(time.Second)),
			Duration:    time.Duration(msg.Duration * float64(time.Second)),
		}

		select {
		case lt.results <- tr:
		case <-ctx.Done():
			lt.setErr(ctx.Err())
			return
		case <-lt.done:
			return
		}
	}
}

// keepAliveLoop 周期性发送 KeepAlive, 防止静音期服务端断开.
func (lt *LiveTranscription) keepAliveLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	payload, _ := json.Marshal(deepgramControlMessage{Type: "KeepAlive"})

	for {
		select {
		case <-ctx.Done():
			return
		case <-lt.done:
			return
		case <-ticker.C:
			lt.writeMu.Lock()
			err := lt.conn.Write(ctx, websocket.MessageText, payload)
			lt.writeMu.Unlock()
			if err != nil {
				lt.logger.Debug("keepalive failed", zap.Error(err))
				return
			}
		}
	}
}
