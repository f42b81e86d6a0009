// Command pharmacy-agent runs the pharmacy voice assistant worker.
//
// Subcommands:
//
//	pharmacy-agent serve     — 启动运维 HTTP 服务（health / metrics / version）
//	pharmacy-agent console   — 本地文本会话（stdin 输入, stdout 回复）
//	pharmacy-agent voice     — 回环房间里的本地语音会话（PCM 输入, 回复音频落盘）
//	pharmacy-agent migrate   — 药房目录数据库迁移
//	pharmacy-agent health    — 探测运行中实例的健康端点
//	pharmacy-agent version   — 显示版本信息
package main
