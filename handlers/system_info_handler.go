package handlers

import (
	"corp-bot/utils"
	"fmt"
	"runtime"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// StatusSource supplies the bot's own figures for the status embed.
type StatusSource interface {
	JobCount() int
	Uptime() time.Duration
	Latency() time.Duration
}

// SystemInfoEmbed builds the status embed. Host figures that cannot be read
// are shown as "n/a".
func SystemInfoEmbed(src StatusSource) *discordgo.MessageEmbed {
	osVersion, kernel := "n/a", "n/a"
	if hostInfo, err := host.Info(); err == nil {
		osVersion = fmt.Sprintf("%s %s", hostInfo.Platform, hostInfo.PlatformVersion)
		kernel = hostInfo.KernelVersion
	}
	cpuCount := "n/a"
	if n, err := cpu.Counts(true); err == nil {
		cpuCount = fmt.Sprintf("%d", n)
	}
	cpuUsage := "n/a"
	if percent, err := cpu.Percent(0, false); err == nil && len(percent) > 0 {
		cpuUsage = fmt.Sprintf("%.1f%%", percent[0])
	}
	memory := "n/a"
	if vm, err := mem.VirtualMemory(); err == nil {
		memory = fmt.Sprintf("%.1f%% (%d MB / %d MB)", vm.UsedPercent, vm.Used/1024/1024, vm.Total/1024/1024)
	}

	return &discordgo.MessageEmbed{
		Title: "System status",
		Color: 0x5865F2, // Discord Blurple
		Fields: []*discordgo.MessageEmbedField{
			{Name: "💻 OS", Value: osVersion, Inline: true},
			{Name: "🔧 Kernel", Value: kernel, Inline: true},
			{Name: "🐹 Go", Value: runtime.Version(), Inline: true},
			{Name: "🔼 CPUs", Value: cpuCount, Inline: true},
			{Name: "🔥 CPU usage", Value: cpuUsage, Inline: true},
			{Name: "🧠 Memory", Value: memory, Inline: true},
			{Name: "⏱️ WebSocket latency", Value: src.Latency().String(), Inline: true},
			{Name: "🚀 Goroutines", Value: fmt.Sprintf("%d", runtime.NumGoroutine()), Inline: true},
			{Name: "📅 Scheduled jobs", Value: fmt.Sprintf("%d", src.JobCount()), Inline: true},
			{Name: "⌛ Uptime", Value: src.Uptime().Truncate(time.Second).String(), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("System status at %s UTC", time.Now().UTC().Format("15:04")),
		},
	}
}

func SystemInfoHandler(s utils.EmbedSender, channelID string, src StatusSource) error {
	_, err := s.ChannelMessageSendEmbed(channelID, SystemInfoEmbed(src))
	return err
}
