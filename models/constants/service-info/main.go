package serviceInfo

import "fmt"

type ServiceInfo string

var (
	SERVICE_NAME        ServiceInfo = "xBrowse Variant Search Service"
	SERVICE_WELCOME     ServiceInfo = "Welcome to the xBrowse family variant search API!"
	SERVICE_DESCRIPTION ServiceInfo = "Family-based variant inheritance search over annotated variant stores."

	SERVICE_ARTIFACT    ServiceInfo = "xbrowse"
	SERVICE_VERSION     ServiceInfo = "0.1.0"
	SERVICE_TYPE_NO_VER ServiceInfo = ServiceInfo(fmt.Sprintf("org.seqr:%s", SERVICE_ARTIFACT))
	SERVICE_ID          ServiceInfo = SERVICE_TYPE_NO_VER
	SERVICE_TYPE        ServiceInfo = ServiceInfo(fmt.Sprintf("%s:%s", SERVICE_TYPE_NO_VER, SERVICE_VERSION))
)
