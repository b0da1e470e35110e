package utils

import (
	"fmt"
	"strings"

	dg "github.com/bwmarrin/discordgo"
)

var PermissionNames = map[int64]string{
	dg.PermissionCreateInstantInvite:    "Create Instant Invite",
	dg.PermissionKickMembers:            "Kick Members",
	dg.PermissionBanMembers:             "Ban Members",
	dg.PermissionAdministrator:          "Administrator",
	dg.PermissionManageChannels:         "Manage Channels",
	dg.PermissionManageGuild:            "Manage Server",
	dg.PermissionAddReactions:           "Add Reactions",
	dg.PermissionViewAuditLogs:          "View Audit Logs",
	dg.PermissionVoicePrioritySpeaker:   "Priority Speaker",
	dg.PermissionVoiceStreamVideo:       "Stream Video",
	dg.PermissionViewChannel:            "View Channel",
	dg.PermissionSendMessages:           "Send Messages",
	dg.PermissionSendTTSMessages:        "Send TTS Messages",
	dg.PermissionManageMessages:         "Manage Messages",
	dg.PermissionEmbedLinks:             "Embed Links",
	dg.PermissionAttachFiles:            "Attach Files",
	dg.PermissionReadMessageHistory:     "Read Message History",
	dg.PermissionMentionEveryone:        "Mention Everyone",
	dg.PermissionUseExternalEmojis:      "Use External Emojis",
	dg.PermissionViewGuildInsights:      "View Server Insights",
	dg.PermissionVoiceConnect:           "Connect",
	dg.PermissionVoiceSpeak:             "Speak",
	dg.PermissionVoiceMuteMembers:       "Mute Members",
	dg.PermissionVoiceDeafenMembers:     "Deafen Members",
	dg.PermissionVoiceMoveMembers:       "Move Members",
	dg.PermissionChangeNickname:         "Change Nickname",
	dg.PermissionManageNicknames:        "Manage Nicknames",
	dg.PermissionManageRoles:            "Manage Roles",
	dg.PermissionManageWebhooks:         "Manage Webhooks",
	dg.PermissionUseApplicationCommands: "Use Application Commands",
	dg.PermissionManageEvents:           "Manage Events",
	dg.PermissionManageThreads:          "Manage Threads",
	dg.PermissionCreatePublicThreads:    "Create Public Threads",
	dg.PermissionCreatePrivateThreads:   "Create Private Threads",
	dg.PermissionUseExternalStickers:    "Use External Stickers",
	dg.PermissionSendMessagesInThreads:  "Send Messages in Threads",
	dg.PermissionModerateMembers:        "Timeout Members",
}

// HasPermissions reports whether perms grants every bit in required.
// Administrator grants everything.
func HasPermissions(perms, required int64) bool {
	if perms&dg.PermissionAdministrator != 0 {
		return true
	}
	return perms&required == required
}

// FormatPermissions lists the names of the bits set in perms, lowest bit first.
func FormatPermissions(perms int64) string {
	var bits []int64
	for bit := int64(1); bit > 0 && bit <= perms; bit <<= 1 {
		if perms&bit != 0 {
			bits = append(bits, bit)
		}
	}
	names := make([]string, 0, len(bits))
	for _, bit := range bits {
		name, ok := PermissionNames[bit]
		if !ok {
			name = fmt.Sprintf("0x%x", bit)
		}
		names = append(names, name)
	}
	return strings.Join(names, ", ")
}
